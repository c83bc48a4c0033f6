package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/brokerdb/internal/auth"
	"github.com/localnerve/brokerdb/internal/config"
	"github.com/localnerve/brokerdb/internal/models"
	"github.com/localnerve/brokerdb/internal/routes"
	"github.com/localnerve/brokerdb/internal/storage"
	"gorm.io/gorm"
)

// PNG is the smallest byte sequence sniffed as image/png.
var PNG = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

// PDF is a minimal document sniffed as application/pdf.
var PDF = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")

// Env is a fully wired application over an in-memory database.
type Env struct {
	Config *config.Config
	DB     *gorm.DB
	Store  *storage.LocalStore
	Issuer *auth.Issuer
	App    *fiber.App
}

// NewEnv builds an application with media stored in a temp directory.
func NewEnv(t *testing.T) *Env {
	t.Helper()

	cfg := &config.Config{
		DBType:      "sqlite",
		DBDatabase:  ":memory:",
		JWTSecret:   "test-secret",
		JWTIssuer:   "brokerdb-test",
		JWTTTL:      time.Hour,
		MediaRoot:   t.TempDir(),
		MaxUploadMB: 10,
	}

	db := OpenDB(t)
	store, err := storage.NewLocalStore(cfg.MediaRoot)
	if err != nil {
		t.Fatalf("Failed to create media store: %v", err)
	}
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)

	app := routes.NewApp(cfg)
	routes.Setup(app, routes.Deps{Config: cfg, DB: db, Store: store, Issuer: issuer})

	return &Env{Config: cfg, DB: db, Store: store, Issuer: issuer, App: app}
}

// Token mints a bearer token for user.
func (e *Env) Token(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := e.Issuer.Issue(user)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	return token
}

// Do sends req as user (anonymous when nil) and returns the response.
func (e *Env) Do(t *testing.T, user *models.User, req *http.Request) *http.Response {
	t.Helper()
	if user != nil {
		req.Header.Set("Authorization", "Bearer "+e.Token(t, user))
	}
	resp, err := e.App.Test(req, -1)
	if err != nil {
		t.Fatalf("Request %s %s failed: %v", req.Method, req.URL, err)
	}
	return resp
}

// JSON sends body encoded as JSON.
func (e *Env) JSON(t *testing.T, user *models.User, method, path string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to encode request body: %v", err)
		}
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return e.Do(t, user, req)
}

// Decode reads the response body into out.
func Decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("Failed to decode response body: %v", err)
	}
}

// Body decodes the response as a JSON object.
func Body(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	Decode(t, resp, &out)
	return out
}

// FilePart is one file of a multipart form.
type FilePart struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

// Multipart encodes fields and files as a multipart/form-data request.
func Multipart(t *testing.T, method, path string, fields map[string]string, files ...FilePart) *http.Request {
	t.Helper()

	values := make(map[string][]string, len(fields))
	for k, v := range fields {
		values[k] = []string{v}
	}
	return MultipartValues(t, method, path, values, files...)
}

// MultipartValues is Multipart with repeatable fields; each value is
// written as its own part.
func MultipartValues(t *testing.T, method, path string, fields map[string][]string, files ...FilePart) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, vs := range fields {
		for _, v := range vs {
			if err := w.WriteField(k, v); err != nil {
				t.Fatalf("Failed to write field %s: %v", k, err)
			}
		}
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, f.Filename))
		h.Set("Content-Type", f.ContentType)
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("Failed to create part %s: %v", f.Field, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			t.Fatalf("Failed to write part %s: %v", f.Field, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

// FileHeaders parses files back into the headers a handler would see.
func FileHeaders(t *testing.T, files ...FilePart) []*multipart.FileHeader {
	t.Helper()

	req := Multipart(t, http.MethodPost, "/", nil, files...)
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		t.Fatalf("Failed to parse multipart form: %v", err)
	}
	var out []*multipart.FileHeader
	for _, f := range files {
		out = append(out, req.MultipartForm.File[f.Field]...)
	}
	return dedupe(out)
}

func dedupe(headers []*multipart.FileHeader) []*multipart.FileHeader {
	seen := make(map[*multipart.FileHeader]bool, len(headers))
	out := headers[:0]
	for _, h := range headers {
		if !seen[h] {
			seen[h] = true
			out = append(out, h)
		}
	}
	return out
}

// Image is a valid PNG upload on field.
func Image(field string) FilePart {
	return FilePart{Field: field, Filename: "photo.png", ContentType: "image/png", Data: PNG}
}

// Document is a valid PDF upload on field.
func Document(field string) FilePart {
	return FilePart{Field: field, Filename: "contract.pdf", ContentType: "application/pdf", Data: PDF}
}

// NewTempStore returns a media store rooted in a temp directory.
func NewTempStore(t *testing.T) (*storage.LocalStore, error) {
	t.Helper()
	return storage.NewLocalStore(t.TempDir())
}
