package handlers

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/collabtrack/server/internal/models"
	"github.com/collabtrack/server/internal/preferences"
)

func preferencesOf(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	prefs, ok := envelopeData(t, body)["preferences"].(map[string]any)
	if !ok {
		t.Fatalf("expected preferences object, got %+v", body)
	}
	return prefs
}

func TestPreferencesDefaults(t *testing.T) {
	env := setupTestEnv(t)
	_, token := createTestUser(t, env.db, "viewer@example.com", models.UserRoleObserver)

	resp := performRequest(t, env.app, http.MethodGet, "/api/preferences/projects", nil, authHeaders(token))
	assertStatus(t, resp, http.StatusOK)
	body := decodeJSONMap(t, resp)

	data := envelopeData(t, body)
	if columns, _ := data["columns"].([]any); len(columns) != 4 {
		t.Fatalf("expected 4 project columns, got %v", data["columns"])
	}
	prefs := preferencesOf(t, body)
	if fmt.Sprint(prefs["visibleColumns"]) != "[name frGoal createdAt]" || prefs["sortField"] != "name" || prefs["sortDirection"] != "asc" {
		t.Fatalf("unexpected defaults %+v", prefs)
	}

	resp = performRequest(t, env.app, http.MethodGet, "/api/preferences/invoices", nil, authHeaders(token))
	assertStatus(t, resp, http.StatusNotFound)
	assertEnvelopeError(t, decodeJSONMap(t, resp), "unknown table")
}

func TestPreferencesPutEnforcesRequiredColumn(t *testing.T) {
	env := setupTestEnv(t)
	user, token := createTestUser(t, env.db, "viewer@example.com", models.UserRoleObserver)

	resp := performJSONRequest(t, env.app, http.MethodPut, "/api/preferences/companyCollaborations", map[string]any{
		"visibleColumns": []string{"status", "amount"},
		"sortField":      "amount",
		"sortDirection":  "desc",
	}, authHeaders(token))
	assertStatus(t, resp, http.StatusOK)
	prefs := preferencesOf(t, decodeJSONMap(t, resp))
	if fmt.Sprint(prefs["visibleColumns"]) != "[project status amount]" {
		t.Fatalf("expected required column prepended, got %v", prefs["visibleColumns"])
	}

	stored := env.store.Get(context.Background(), user.ID, preferences.TableCompanyCollaborations, preferences.TablePreferences{})
	if stored.SortField != "amount" || stored.SortDirection != preferences.SortDesc {
		t.Fatalf("expected stored sort amount desc, got %+v", stored)
	}

	resp = performRequest(t, env.app, http.MethodGet, "/api/preferences/projectCollaborations", nil, authHeaders(token))
	assertStatus(t, resp, http.StatusOK)
	if prefs := preferencesOf(t, decodeJSONMap(t, resp)); prefs["sortField"] != "status" {
		t.Fatalf("expected other table untouched, got %+v", prefs)
	}
}

func TestPreferencesPutValidation(t *testing.T) {
	env := setupTestEnv(t)
	_, token := createTestUser(t, env.db, "viewer@example.com", models.UserRoleObserver)

	testCases := []struct {
		name    string
		payload map[string]any
		field   string
	}{
		{"unknown column", map[string]any{"visibleColumns": []string{"name", "salary"}}, "visibleColumns"},
		{"unsortable column", map[string]any{"visibleColumns": []string{"name"}, "sortField": "address"}, "sortField"},
		{"bad direction", map[string]any{"visibleColumns": []string{"name"}, "sortDirection": "sideways"}, "sortDirection"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := performJSONRequest(t, env.app, http.MethodPut, "/api/preferences/companies", tc.payload, authHeaders(token))
			assertStatus(t, resp, http.StatusBadRequest)
			if fields := fieldErrors(t, decodeJSONMap(t, resp)); fields[tc.field] == nil {
				t.Fatalf("expected %s error, got %+v", tc.field, fields)
			}
		})
	}
}

func TestPreferencesToggleSortAndReset(t *testing.T) {
	env := setupTestEnv(t)
	_, token := createTestUser(t, env.db, "viewer@example.com", models.UserRoleObserver)

	toggle := func(field string) map[string]any {
		t.Helper()
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/preferences/people/sort", map[string]any{"field": field}, authHeaders(token))
		assertStatus(t, resp, http.StatusOK)
		return preferencesOf(t, decodeJSONMap(t, resp))
	}

	if prefs := toggle("name"); prefs["sortField"] != "name" || prefs["sortDirection"] != "desc" {
		t.Fatalf("expected name desc, got %+v", prefs)
	}
	if prefs := toggle("name"); prefs["sortDirection"] != "asc" {
		t.Fatalf("expected name asc after second toggle, got %+v", prefs)
	}
	if prefs := toggle("email"); prefs["sortField"] != "email" || prefs["sortDirection"] != "asc" {
		t.Fatalf("expected email asc, got %+v", prefs)
	}

	resp := performJSONRequest(t, env.app, http.MethodPost, "/api/preferences/people/sort", map[string]any{"field": "phone"}, authHeaders(token))
	assertStatus(t, resp, http.StatusBadRequest)

	resp = performRequest(t, env.app, http.MethodDelete, "/api/preferences/people", nil, authHeaders(token))
	assertStatus(t, resp, http.StatusOK)
	if prefs := preferencesOf(t, decodeJSONMap(t, resp)); prefs["sortField"] != "name" || prefs["sortDirection"] != "asc" {
		t.Fatalf("expected defaults after reset, got %+v", prefs)
	}

	resp = performRequest(t, env.app, http.MethodGet, "/api/preferences/people", nil, authHeaders(token))
	assertStatus(t, resp, http.StatusOK)
	if prefs := preferencesOf(t, decodeJSONMap(t, resp)); prefs["sortField"] != "name" {
		t.Fatalf("expected reset to persist, got %+v", prefs)
	}
}
