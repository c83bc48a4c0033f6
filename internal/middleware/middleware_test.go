package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/brokerdb/internal/auth"
	"github.com/localnerve/brokerdb/internal/handlers"
	"github.com/localnerve/brokerdb/internal/middleware"
	"github.com/localnerve/brokerdb/internal/models"
	"github.com/localnerve/brokerdb/internal/policy"
	"github.com/localnerve/brokerdb/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestVersionMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.VersionMiddleware())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("apiVersion").(string))
	})

	tests := []struct {
		header string
		want   string
	}{
		{"", middleware.APIVersion},
		{"1", middleware.APIVersion},
		{"1.0", middleware.APIVersion},
		{"2.0.0", "2.0.0"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set("X-Api-Version", tt.header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, tt.want, resp.Header.Get("X-Api-Version"))
	}
}

func newAuthApp(t *testing.T) (*fiber.App, *auth.Issuer, *gorm.DB) {
	db := testutil.OpenDB(t)
	issuer := auth.NewIssuer("secret", "brokerdb", time.Hour)

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	app.Use(middleware.Auth(db, issuer))
	app.Get("/clients", middleware.RequireAccess(policy.Client, policy.Read), func(c *fiber.Ctx) error {
		return c.SendString(middleware.Requester(c).String())
	})
	return app, issuer, db
}

func TestAuthStoresRequester(t *testing.T) {
	app, issuer, db := newAuthApp(t)
	agent := testutil.CreateUser(t, db, models.RoleAgent)
	viewer := testutil.CreateUser(t, db, models.RoleViewer)

	call := func(user *models.User) *http.Response {
		token, err := issuer.Issue(user)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/clients", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	resp := call(agent)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = call(viewer)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	other := auth.NewIssuer("other-secret", "brokerdb", time.Hour)
	token, err := other.Issue(agent)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/clients", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequesterDefaultsToAnonymous(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	app.Get("/", middleware.RequireAccess(policy.Account, policy.Read), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
