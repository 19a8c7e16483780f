package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func setupResponseTestApp() *fiber.App {
	app := fiber.New()

	app.Get("/success", func(c *fiber.Ctx) error {
		return Success(c, fiber.StatusCreated, fiber.Map{"id": "123"})
	})

	app.Get("/error", func(c *fiber.Ctx) error {
		return Error(c, fiber.StatusBadRequest, "invalid input")
	})

	app.Get("/validation", func(c *fiber.Ctx) error {
		return ValidationError(c, map[string]string{"name": "is required"})
	})

	app.Get("/windowed", func(c *fiber.Ctx) error {
		return Windowed(c, []string{"a", "b"}, WindowMeta{VisibleCount: 2, FilteredCount: 5, Total: 9, BatchSize: 2, HasMore: true})
	})

	return app
}

func performResponseTestRequest(t *testing.T, app *fiber.App, path string) map[string]any {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request to %s failed: %v", path, err)
	}
	defer resp.Body.Close()

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed decoding %s response body: %v", path, err)
	}

	body["_statusCode"] = float64(resp.StatusCode)
	return body
}

func requireNumberField(t *testing.T, obj map[string]any, key string) int {
	t.Helper()

	raw, ok := obj[key]
	if !ok {
		t.Fatalf("expected field %q to exist in response", key)
	}

	number, ok := raw.(float64)
	if !ok {
		t.Fatalf("expected field %q to be numeric, got %T", key, raw)
	}

	return int(number)
}

func TestResponseHelpers(t *testing.T) {
	app := setupResponseTestApp()

	t.Run("Success returns expected envelope", func(t *testing.T) {
		body := performResponseTestRequest(t, app, "/success")

		if status := requireNumberField(t, body, "_statusCode"); status != fiber.StatusCreated {
			t.Fatalf("expected status %d, got %d", fiber.StatusCreated, status)
		}
		if success, ok := body["success"].(bool); !ok || !success {
			t.Fatalf("expected success=true, got %v", body["success"])
		}
		data, ok := body["data"].(map[string]any)
		if !ok || data["id"] != "123" {
			t.Fatalf("expected data.id to be %q, got %v", "123", body["data"])
		}
	})

	t.Run("Error returns expected envelope", func(t *testing.T) {
		body := performResponseTestRequest(t, app, "/error")

		if status := requireNumberField(t, body, "_statusCode"); status != fiber.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", fiber.StatusBadRequest, status)
		}
		if success, ok := body["success"].(bool); !ok || success {
			t.Fatalf("expected success=false, got %v", body["success"])
		}
		if body["error"] != "invalid input" {
			t.Fatalf("expected error message %q, got %v", "invalid input", body["error"])
		}
	})

	t.Run("ValidationError carries field details", func(t *testing.T) {
		body := performResponseTestRequest(t, app, "/validation")

		if status := requireNumberField(t, body, "_statusCode"); status != fiber.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", fiber.StatusBadRequest, status)
		}
		fields, ok := body["fields"].(map[string]any)
		if !ok || fields["name"] != "is required" {
			t.Fatalf("expected fields.name detail, got %v", body["fields"])
		}
	})

	t.Run("Windowed returns data and window metadata", func(t *testing.T) {
		body := performResponseTestRequest(t, app, "/windowed")

		data, ok := body["data"].([]any)
		if !ok || len(data) != 2 {
			t.Fatalf("expected two data items, got %v", body["data"])
		}
		window, ok := body["window"].(map[string]any)
		if !ok {
			t.Fatalf("expected window object, got %T", body["window"])
		}
		if got := requireNumberField(t, window, "filteredCount"); got != 5 {
			t.Fatalf("expected filteredCount=5, got %d", got)
		}
		if got := requireNumberField(t, window, "total"); got != 9 {
			t.Fatalf("expected total=9, got %d", got)
		}
		if hasMore, _ := window["hasMore"].(bool); !hasMore {
			t.Fatalf("expected hasMore=true")
		}
	})
}
