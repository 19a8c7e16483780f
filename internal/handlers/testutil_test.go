package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/collabtrack/server/internal/config"
	"github.com/collabtrack/server/internal/database"
	"github.com/collabtrack/server/internal/middleware"
	"github.com/collabtrack/server/internal/models"
	"github.com/collabtrack/server/internal/preferences"
	"github.com/collabtrack/server/internal/services"
	"github.com/collabtrack/server/pkg/logger"
	"github.com/collabtrack/server/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	testFrontendURL = "http://localhost:3000"
	testCookieName  = "collabtrack_session"
	testDomain      = "example.com"
)

type testEnv struct {
	app      *fiber.App
	db       *gorm.DB
	provider *fakeProvider
	store    *preferences.Store
}

// fakeProvider stands in for the OIDC provider; Exchange returns identity
// for any code.
type fakeProvider struct {
	identity *services.ExternalIdentity
	err      error
}

func (p *fakeProvider) AuthCodeURL(state string) string {
	return "https://idp.example.com/authorize?state=" + state
}

func (p *fakeProvider) Exchange(_ context.Context, code string) (*services.ExternalIdentity, error) {
	if p.err != nil {
		return nil, p.err
	}
	if p.identity == nil {
		return nil, errors.New("no identity configured")
	}
	identity := *p.identity
	return &identity, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			FrontendURL: testFrontendURL,
		},
		Session: config.SessionConfig{
			Secret:          "handlers-test-secret",
			ExpirationHours: 24,
			CookieName:      testCookieName,
		},
		Auth: config.AuthConfig{
			AllowedDomains: []string{testDomain},
		},
	}
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger.SetOutput(io.Discard)
	utils.ConfigureSession("handlers-test-secret", 24)

	db, err := database.Connect(config.DBConfig{Driver: "sqlite", SQLitePath: ":memory:"})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB from gorm: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed automigrating models: %v", err)
	}

	cfg := testConfig()
	provider := &fakeProvider{}
	store := preferences.NewStore(preferences.NewGormRepository(db))

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Use(recover.New())
	app.Use(middleware.RequestLogger())
	app.Use(middleware.SecurityLogger())

	RegisterRoutes(app, Dependencies{
		DB:          db,
		Config:      cfg,
		Preferences: store,
		Money:       utils.NewMoneyFormatter("EUR", "de"),
		Provider:    provider,
		Gate:        services.NewAuthGate(db, cfg.Auth.AllowedDomains),
	})

	return &testEnv{app: app, db: db, provider: provider, store: store}
}

func createTestUser(t *testing.T, db *gorm.DB, email string, role models.UserRole) (*models.User, string) {
	t.Helper()

	user := &models.User{
		ID:       "sub-" + uuid.NewString(),
		Email:    email,
		FullName: "Test User",
		Role:     role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed creating test user: %v", err)
	}

	token, err := utils.GenerateSessionToken(user)
	if err != nil {
		t.Fatalf("failed generating session token: %v", err)
	}

	return user, token
}

func createTestCompany(t *testing.T, db *gorm.DB, name string) *models.Company {
	t.Helper()
	company := &models.Company{Name: name}
	if err := db.Create(company).Error; err != nil {
		t.Fatalf("failed creating company: %v", err)
	}
	return company
}

func createTestProject(t *testing.T, db *gorm.DB, name string, goal *float64) *models.Project {
	t.Helper()
	project := &models.Project{Name: name, FrGoal: goal}
	if err := db.Create(project).Error; err != nil {
		t.Fatalf("failed creating project: %v", err)
	}
	return project
}

func createTestPerson(t *testing.T, db *gorm.DB, name string, companyID uuid.UUID) *models.Person {
	t.Helper()
	person := &models.Person{ContactDetails: models.ContactDetails{Name: name, CompanyID: companyID}}
	if err := db.Create(person).Error; err != nil {
		t.Fatalf("failed creating person: %v", err)
	}
	return person
}

func createTestCollaboration(t *testing.T, db *gorm.DB, collab models.Collaboration) *models.Collaboration {
	t.Helper()
	if collab.Responsible == "" {
		collab.Responsible = "Alice"
	}
	if collab.Priority == "" {
		collab.Priority = models.PriorityLow
	}
	if collab.Type == "" {
		collab.Type = models.CollaborationTypeFinancial
	}
	if err := db.Create(&collab).Error; err != nil {
		t.Fatalf("failed creating collaboration: %v", err)
	}
	return &collab
}

func authHeaders(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func performRequest(t *testing.T, app *fiber.App, method, path string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := app.Test(req, int((10 * time.Second).Milliseconds()))
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}

	return resp
}

func performJSONRequest(t *testing.T, app *fiber.App, method, path string, payload any, headers map[string]string) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	requestHeaders := map[string]string{}
	for key, value := range headers {
		requestHeaders[key] = value
	}
	if payload != nil {
		requestHeaders["Content-Type"] = "application/json"
	}

	return performRequest(t, app, method, path, body, requestHeaders)
}

func decodeJSONMap(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed reading response body: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("failed decoding JSON response: %v body=%q", err, string(raw))
	}

	return payload
}

func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Fatalf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

func assertEnvelopeError(t *testing.T, body map[string]any, expected string) {
	t.Helper()
	if success, _ := body["success"].(bool); success {
		t.Fatalf("expected success=false, got %+v", body)
	}
	if got, _ := body["error"].(string); got != expected {
		t.Fatalf("expected error %q, got %q", expected, got)
	}
}

func envelopeData(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected object data, got %+v", body)
	}
	return data
}

func envelopeList(t *testing.T, body map[string]any) []any {
	t.Helper()
	data, ok := body["data"].([]any)
	if !ok {
		t.Fatalf("expected array data, got %+v", body)
	}
	return data
}

func fieldErrors(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	assertEnvelopeError(t, body, "validation failed")
	fields, ok := body["fields"].(map[string]any)
	if !ok {
		t.Fatalf("expected field errors, got %+v", body)
	}
	return fields
}

func responseCookie(resp *http.Response, name string) *http.Cookie {
	for _, cookie := range resp.Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func queryParam(t *testing.T, location, key string) string {
	t.Helper()
	parsed, err := url.Parse(location)
	if err != nil {
		t.Fatalf("invalid redirect location %q: %v", location, err)
	}
	return parsed.Query().Get(key)
}
