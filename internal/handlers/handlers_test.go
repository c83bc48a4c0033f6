package handlers_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/localnerve/brokerdb/internal/models"
	"github.com/localnerve/brokerdb/internal/services"
	"github.com/localnerve/brokerdb/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// errorsOf returns the per-field messages of a 400 response.
func errorsOf(t *testing.T, resp *http.Response) map[string][]string {
	t.Helper()
	var body struct {
		Type   string              `json:"type"`
		Errors map[string][]string `json:"errors"`
	}
	testutil.Decode(t, resp, &body)
	assert.Equal(t, "validation", body.Type)
	return body.Errors
}

func id(t *testing.T, body map[string]interface{}) uint64 {
	t.Helper()
	v, ok := body["id"].(float64)
	require.True(t, ok, "no id in %v", body)
	return uint64(v)
}

func TestHealthIsPublic(t *testing.T) {
	env := testutil.NewEnv(t)

	resp := env.Do(t, nil, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "1.0.0", resp.Header.Get("X-Api-Version"))

	body := testutil.Body(t, resp)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "ok", body["database"])
	assert.Equal(t, "ok", body["media"])
}

func TestUnknownRoute(t *testing.T) {
	env := testutil.NewEnv(t)
	resp := env.Do(t, nil, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAuthentication(t *testing.T) {
	env := testutil.NewEnv(t)
	agent := testutil.CreateUser(t, env.DB, models.RoleAgent)

	t.Run("no token", func(t *testing.T) {
		resp := env.Do(t, nil, httptest.NewRequest(http.MethodGet, "/api/properties", nil))
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("not bearer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/properties", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		resp := env.Do(t, nil, req)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/properties", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")
		resp := env.Do(t, nil, req)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Invalid token", testutil.Body(t, resp)["message"])
	})

	t.Run("inactive user", func(t *testing.T) {
		inactive := testutil.CreateUser(t, env.DB, models.RoleAdmin)
		testutil.Deactivate(t, env.DB, inactive)
		resp := env.Do(t, inactive, httptest.NewRequest(http.MethodGet, "/api/accounts/me", nil))
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("deleted user", func(t *testing.T) {
		gone := testutil.CreateUser(t, env.DB, models.RoleAgent)
		token := env.Token(t, gone)
		require.NoError(t, env.DB.Delete(gone).Error)

		req := httptest.NewRequest(http.MethodGet, "/api/accounts/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp := env.Do(t, nil, req)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("role comes from the database", func(t *testing.T) {
		demoted := testutil.CreateUser(t, env.DB, models.RoleAgent)
		token := env.Token(t, demoted)
		require.NoError(t, env.DB.Model(demoted).Update("role", models.RoleViewer).Error)

		req := httptest.NewRequest(http.MethodGet, "/api/properties", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp := env.Do(t, nil, req)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("me", func(t *testing.T) {
		resp := env.Do(t, agent, httptest.NewRequest(http.MethodGet, "/api/accounts/me", nil))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := testutil.Body(t, resp)
		assert.Equal(t, agent.Email, body["email"])
		assert.Equal(t, "agent", body["role"])
	})
}

func TestViewerIsForbiddenFromStaffResources(t *testing.T) {
	env := testutil.NewEnv(t)
	viewer := testutil.CreateUser(t, env.DB, models.RoleViewer)
	agent := testutil.CreateUser(t, env.DB, models.RoleAgent)
	property := testutil.CreateProperty(t, env.DB, agent, models.PropertyAvailable)

	paths := []string{
		"/api/properties",
		fmt.Sprintf("/api/properties/%d", property.ID),
		"/api/clients",
		"/api/contracts",
		"/api/visits",
		"/api/interactions/contact-forms",
		"/api/dashboard",
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			resp := env.Do(t, viewer, httptest.NewRequest(http.MethodGet, path, nil))
			require.Equal(t, http.StatusForbidden, resp.StatusCode)
			assert.Equal(t, "permission", testutil.Body(t, resp)["type"])
		})
	}

	resp := env.JSON(t, viewer, http.MethodPost, "/api/clients", map[string]string{
		"name": "x", "email": "x@example.com", "phone": "1",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAgentSeesOnlyOwnRows(t *testing.T) {
	env := testutil.NewEnv(t)
	agent := testutil.CreateUser(t, env.DB, models.RoleAgent)
	other := testutil.CreateUser(t, env.DB, models.RoleAgent)
	admin := testutil.CreateUser(t, env.DB, models.RoleAdmin)
	mine := testutil.CreateProperty(t, env.DB, agent, models.PropertyAvailable)
	theirs := testutil.CreateProperty(t, env.DB, other, models.PropertyAvailable)
	theirClient := testutil.CreateClient(t, env.DB, other)

	var list []map[string]interface{}
	testutil.Decode(t, env.Do(t, agent, httptest.NewRequest(http.MethodGet, "/api/properties", nil)), &list)
	require.Len(t, list, 1)
	assert.Equal(t, float64(mine.ID), list[0]["id"])

	resp := env.Do(t, agent, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/properties/%d", theirs.ID), nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.JSON(t, agent, http.MethodPatch, fmt.Sprintf("/api/clients/%d", theirClient.ID), map[string]string{"phone": "1"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.Do(t, agent, httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/properties/%d", theirs.ID), nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.Do(t, agent, httptest.NewRequest(http.MethodGet, "/api/properties/abc", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	testutil.Decode(t, env.Do(t, admin, httptest.NewRequest(http.MethodGet, "/api/properties", nil)), &list)
	assert.Len(t, list, 2)

	testutil.Decode(t, env.Do(t, agent, httptest.NewRequest(http.MethodGet, "/api/properties?status=sold", nil)), &list)
	assert.Empty(t, list)
}

func TestSignedContractFlow(t *testing.T) {
	env := testutil.NewEnv(t)
	agent := testutil.CreateUser(t, env.DB, models.RoleAgent)

	resp := env.JSON(t, agent, http.MethodPost, "/api/properties", map[string]interface{}{
		"title":       "Corner house",
		"description": "Three bedrooms",
		"price":       "450000.00",
		"address":     "5 Elm Street",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	property := testutil.Body(t, resp)
	propertyID := id(t, property)
	assert.Equal(t, "available", property["status"])
	assert.Equal(t, float64(agent.ID), property["owner"])

	resp = env.JSON(t, agent, http.MethodPost, "/api/clients", map[string]interface{}{
		"name":  "Sam Renter",
		"email": "sam@example.com",
		"phone": "555-0111",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	clientID := id(t, testutil.Body(t, resp))

	contractFields := func(status string) map[string]string {
		return map[string]string{
			"property":   fmt.Sprint(propertyID),
			"client":     fmt.Sprint(clientID),
			"type":       "rental",
			"price":      "1800.00",
			"start_date": "2026-11-01",
			"end_date":   "2027-10-31",
			"status":     status,
		}
	}

	resp = env.Do(t, agent, testutil.Multipart(t, http.MethodPost, "/api/contracts", contractFields("draft"), testutil.Document("document")))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	contract := testutil.Body(t, resp)
	contractID := id(t, contract)
	assert.Equal(t, "draft", contract["status"])
	assert.Equal(t, "2026-11-01", contract["start_date"])
	assert.True(t, strings.HasPrefix(contract["document"].(string), "/media/contracts/"))
	summary := contract["property_summary"].(map[string]interface{})
	assert.Equal(t, "available", summary["status"])
	assert.Equal(t, "sam@example.com", contract["client_summary"].(map[string]interface{})["email"])

	resp = env.JSON(t, agent, http.MethodPatch, fmt.Sprintf("/api/contracts/%d", contractID), map[string]string{"status": "signed"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "signed", testutil.Body(t, resp)["status"])

	resp = env.Do(t, agent, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/properties/%d", propertyID), nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "rented", testutil.Body(t, resp)["status"])

	resp = env.Do(t, agent, testutil.Multipart(t, http.MethodPost, "/api/contracts", contractFields("signed"), testutil.Document("document")))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, errorsOf(t, resp)["non_field_errors"], services.MsgAlreadySigned)

	resp = env.Do(t, agent, testutil.Multipart(t, http.MethodPost, "/api/contracts", contractFields("draft"), testutil.Document("document")))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, errorsOf(t, resp)["non_field_errors"], services.MsgPropertyNotAvailable)
}

func TestContractRequiresDocument(t *testing.T) {
	env := testutil.NewEnv(t)
	agent := testutil.CreateUser(t, env.DB, models.RoleAgent)
	property := testutil.CreateProperty(t, env.DB, agent, models.PropertyAvailable)
	client := testutil.CreateClient(t, env.DB, agent)

	fields := map[string]string{
		"property":   fmt.Sprint(property.ID),
		"client":     fmt.Sprint(client.ID),
		"type":       "sale",
		"price":      "100",
		"start_date": "2026-11-01",
	}
	resp := env.Do(t, agent, testutil.Multipart(t, http.MethodPost, "/api/contracts", fields))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, errorsOf(t, resp), "document")

	text := testutil.FilePart{Field: "document", Filename: "a.txt", ContentType: "text/plain", Data: []byte("hello there")}
	resp = env.Do(t, agent, testutil.Multipart(t, http.MethodPost, "/api/contracts", fields, text))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, errorsOf(t, resp), "document")
}

func TestPropertyImages(t *testing.T) {
	env := testutil.NewEnv(t)
	agent := testutil.CreateUser(t, env.DB, models.RoleAgent)
	fields := map[string]string{
		"title":       "Loft",
		"description": "Open plan",
		"price":       "199000",
		"address":     "9 Mill Lane",
	}

	resp := env.Do(t, agent, testutil.Multipart(t, http.MethodPost, "/api/properties", fields,
		testutil.Image("images"), testutil.Image("images")))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	property := testutil.Body(t, resp)
	images := property["images"].([]interface{})
	require.Len(t, images, 2)
	url := images[0].(map[string]interface{})["image"].(string)
	assert.True(t, strings.HasPrefix(url, "/media/properties/"))

	resp = env.Do(t, nil, httptest.NewRequest(http.MethodGet, url, nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	bad := testutil.FilePart{Field: "images", Filename: "fake.jpg", ContentType: "image/jpeg", Data: []byte("not really a jpeg")}
	resp = env.Do(t, agent, testutil.Multipart(t, http.MethodPost, "/api/properties", fields, testutil.Image("images"), bad))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, errorsOf(t, resp), "images")
	assert.Equal(t, int64(1), testutil.Count(t, env.DB, &models.Property{}, ""))

	// an image id of another property
	other := testutil.CreateProperty(t, env.DB, agent, models.PropertyAvailable)
	foreign := models.PropertyImage{PropertyID: other.ID, Path: "properties/other.png"}
	require.NoError(t, env.DB.Create(&foreign).Error)

	path := fmt.Sprintf("/api/properties/%d", id(t, property))
	resp = env.JSON(t, agent, http.MethodPatch, path, map[string]interface{}{"delete_images": []uint64{foreign.ID}})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	first := uint64(images[0].(map[string]interface{})["id"].(float64))
	resp = env.JSON(t, agent, http.MethodPatch, path, map[string]interface{}{"delete_images": []uint64{first}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, testutil.Body(t, resp)["images"], 1)
}

func TestPropertyDeleteImagesRepeatedFields(t *testing.T) {
	env := testutil.NewEnv(t)
	agent := testutil.CreateUser(t, env.DB, models.RoleAgent)
	fields := map[string]string{
		"title":       "Cottage",
		"description": "Garden",
		"price":       "149000",
		"address":     "4 Brook Road",
	}

	resp := env.Do(t, agent, testutil.Multipart(t, http.MethodPost, "/api/properties", fields,
		testutil.Image("images"), testutil.Image("images"), testutil.Image("images")))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	propertyID := id(t, testutil.Body(t, resp))

	var stored []models.PropertyImage
	require.NoError(t, env.DB.Order("id").Find(&stored, "property_id = ?", propertyID).Error)
	require.Len(t, stored, 3)

	path := fmt.Sprintf("/api/properties/%d", propertyID)
	resp = env.Do(t, agent, testutil.MultipartValues(t, http.MethodPatch, path, map[string][]string{
		"delete_images": {fmt.Sprint(stored[0].ID), fmt.Sprint(stored[1].ID)},
	}))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	images := testutil.Body(t, resp)["images"].([]interface{})
	require.Len(t, images, 1)
	assert.Equal(t, float64(stored[2].ID), images[0].(map[string]interface{})["id"])

	assert.Equal(t, int64(1), testutil.Count(t, env.DB, &models.PropertyImage{}, "property_id = ?", propertyID))
	for i, image := range stored {
		_, err := os.Stat(filepath.Join(env.Store.Root, filepath.FromSlash(image.Path)))
		if i < 2 {
			assert.True(t, os.IsNotExist(err), "file of image %d should be removed", image.ID)
		} else {
			assert.NoError(t, err)
		}
	}

	// comma separated and repeated forms combine
	resp = env.Do(t, agent, testutil.Multipart(t, http.MethodPost, "/api/properties", fields,
		testutil.Image("images"), testutil.Image("images"), testutil.Image("images")))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	otherID := id(t, testutil.Body(t, resp))
	stored = nil
	require.NoError(t, env.DB.Order("id").Find(&stored, "property_id = ?", otherID).Error)
	require.Len(t, stored, 3)

	resp = env.Do(t, agent, testutil.MultipartValues(t, http.MethodPatch, fmt.Sprintf("/api/properties/%d", otherID), map[string][]string{
		"delete_images": {fmt.Sprintf("%d,%d", stored[0].ID, stored[1].ID), fmt.Sprint(stored[2].ID)},
	}))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, testutil.Body(t, resp)["images"])

	resp = env.Do(t, agent, testutil.MultipartValues(t, http.MethodPatch, path, map[string][]string{
		"delete_images": {"abc"},
	}))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, errorsOf(t, resp), "delete_images")
}

func TestAnonymousRequestsChangeNothing(t *testing.T) {
	env := testutil.NewEnv(t)
	agent := testutil.CreateUser(t, env.DB, models.RoleAgent)
	property := testutil.CreateProperty(t, env.DB, agent, models.PropertyAvailable)
	client := testutil.CreateClient(t, env.DB, agent)
	contract := testutil.CreateContract(t, env.DB, property, client, agent, models.ContractRental, models.ContractDraft)
	visit := testutil.CreateVisit(t, env.DB, property, client, agent, time.Now().Add(48*time.Hour), models.VisitScheduled)

	resources := []struct {
		base  string
		id    uint64
		model interface{}
		body  map[string]interface{}
	}{
		{"/api/properties", property.ID, &models.Property{}, map[string]interface{}{"title": "Changed", "price": "1.00", "address": "x", "description": "x"}},
		{"/api/clients", client.ID, &models.Client{}, map[string]interface{}{"name": "Changed", "email": "changed@example.com"}},
		{"/api/contracts", contract.ID, &models.Contract{}, map[string]interface{}{"status": "signed"}},
		{"/api/visits", visit.ID, &models.Visit{}, map[string]interface{}{"status": "completed"}},
	}

	for _, res := range resources {
		detail := fmt.Sprintf("%s/%d", res.base, res.id)
		requests := []struct {
			method string
			path   string
			body   map[string]interface{}
		}{
			{http.MethodGet, res.base, nil},
			{http.MethodGet, detail, nil},
			{http.MethodPost, res.base, res.body},
			{http.MethodPatch, detail, res.body},
			{http.MethodDelete, detail, nil},
		}
		for _, r := range requests {
			t.Run(r.method+" "+r.path, func(t *testing.T) {
				var body interface{}
				if r.body != nil {
					body = r.body
				}
				resp := env.JSON(t, nil, r.method, r.path, body)
				assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			})
		}
		assert.Equal(t, int64(1), testutil.Count(t, env.DB, res.model, ""), res.base)
	}

	var reloaded models.Property
	testutil.Reload(t, env.DB, &reloaded, property.ID)
	assert.Equal(t, property.Title, reloaded.Title)
	assert.Equal(t, models.PropertyAvailable, reloaded.Status)

	var c models.Contract
	testutil.Reload(t, env.DB, &c, contract.ID)
	assert.Equal(t, models.ContractDraft, c.Status)

	var v models.Visit
	testutil.Reload(t, env.DB, &v, visit.ID)
	assert.Equal(t, models.VisitScheduled, v.Status)

	var cl models.Client
	testutil.Reload(t, env.DB, &cl, client.ID)
	assert.Equal(t, client.Name, cl.Name)
}

func TestFavorites(t *testing.T) {
	env := testutil.NewEnv(t)
	agent := testutil.CreateUser(t, env.DB, models.RoleAgent)
	viewer := testutil.CreateUser(t, env.DB, models.RoleViewer)
	property := testutil.CreateProperty(t, env.DB, agent, models.PropertyAvailable)
	path := fmt.Sprintf("/api/interactions/favorites/%d/toggle", property.ID)

	resp := env.Do(t, viewer, httptest.NewRequest(http.MethodPost, path, nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "added", testutil.Body(t, resp)["status"])

	var favorites []map[string]interface{}
	testutil.Decode(t, env.Do(t, viewer, httptest.NewRequest(http.MethodGet, "/api/interactions/favorites", nil)), &favorites)
	require.Len(t, favorites, 1)
	assert.Equal(t, property.Title, favorites[0]["property"].(map[string]interface{})["title"])

	resp = env.Do(t, viewer, httptest.NewRequest(http.MethodPost, path, nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "removed", testutil.Body(t, resp)["status"])

	resp = env.Do(t, viewer, httptest.NewRequest(http.MethodPost, "/api/interactions/favorites/9999/toggle", nil))
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Property not found.", testutil.Body(t, resp)["message"])

	resp = env.Do(t, agent, httptest.NewRequest(http.MethodPost, path, nil))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestContactForms(t *testing.T) {
	env := testutil.NewEnv(t)
	agent := testutil.CreateUser(t, env.DB, models.RoleAgent)
	viewer := testutil.CreateUser(t, env.DB, models.RoleViewer)
	property := testutil.CreateProperty(t, env.DB, agent, models.PropertyAvailable)

	body := map[string]interface{}{
		"name":        "Jo",
		"email":       "jo@example.com",
		"message":     "Is there parking?",
		"property_id": 9999,
	}
	resp := env.JSON(t, viewer, http.MethodPost, "/api/interactions/contact-forms", body)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, errorsOf(t, resp)["property_id"], "Property with this ID does not exist.")

	body["property_id"] = property.ID
	resp = env.JSON(t, viewer, http.MethodPost, "/api/interactions/contact-forms", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	formID := id(t, testutil.Body(t, resp))

	resp = env.Do(t, agent, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/interactions/contact-forms/%d", formID), nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Is there parking?", testutil.Body(t, resp)["message"])

	resp = env.Do(t, agent, httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/interactions/contact-forms/%d", formID), nil))
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestVisitsEndpoint(t *testing.T) {
	env := testutil.NewEnv(t)
	agent := testutil.CreateUser(t, env.DB, models.RoleAgent)
	property := testutil.CreateProperty(t, env.DB, agent, models.PropertyAvailable)
	client := testutil.CreateClient(t, env.DB, agent)

	body := map[string]interface{}{
		"property": property.ID,
		"client":   client.ID,
		"date":     "2001-01-01T10:00:00Z",
		"status":   "scheduled",
	}
	resp := env.JSON(t, agent, http.MethodPost, "/api/visits", body)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, errorsOf(t, resp)["date"], services.MsgVisitInPast)

	body["date"] = "2999-01-01T10:00:00Z"
	resp = env.JSON(t, agent, http.MethodPost, "/api/visits", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	visit := testutil.Body(t, resp)
	assert.Equal(t, float64(agent.ID), visit["agent"])

	resp = env.JSON(t, agent, http.MethodPatch, fmt.Sprintf("/api/visits/%d", id(t, visit)), map[string]string{"status": "completed"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "completed", testutil.Body(t, resp)["status"])
}

func TestDashboardEndpoint(t *testing.T) {
	env := testutil.NewEnv(t)
	agent := testutil.CreateUser(t, env.DB, models.RoleAgent)
	admin := testutil.CreateUser(t, env.DB, models.RoleAdmin)
	testutil.CreateProperty(t, env.DB, agent, models.PropertyAvailable)

	resp := env.Do(t, agent, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := testutil.Body(t, resp)
	assert.Equal(t, float64(1), body["total_properties"])
	assert.Equal(t, float64(1), body["my_properties"])
	assert.Contains(t, body, "my_visits_pending")

	resp = env.Do(t, admin, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = testutil.Body(t, resp)
	assert.Equal(t, float64(1), body["total_properties"])
	assert.NotContains(t, body, "my_properties")
	assert.Contains(t, body, "properties_by_status")
}
