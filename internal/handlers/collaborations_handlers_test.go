package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/collabtrack/server/internal/models"
	"github.com/google/uuid"
)

type collaborationFixture struct {
	company *models.Company
	project *models.Project
	person  *models.Person
}

func setupCollaborationFixture(t *testing.T, env *testEnv) collaborationFixture {
	t.Helper()
	company := createTestCompany(t, env.db, "Acme")
	return collaborationFixture{
		company: company,
		project: createTestProject(t, env.db, "Camp", nil),
		person:  createTestPerson(t, env.db, "Jane", company.ID),
	}
}

func TestCollaborationCreateDerivesStatus(t *testing.T) {
	env := setupTestEnv(t)
	_, token := createTestUser(t, env.db, "member@example.com", models.UserRoleProjectTeamMember)
	fx := setupCollaborationFixture(t, env)

	resp := performJSONRequest(t, env.app, http.MethodPost, "/api/collaborations", map[string]any{
		"companyId":   fx.company.ID.String(),
		"projectId":   fx.project.ID.String(),
		"personId":    fx.person.ID.String(),
		"responsible": "Alice",
		"contacted":   true,
		"letter":      true,
		"priority":    "high",
		"amount":      250,
	}, authHeaders(token))
	assertStatus(t, resp, http.StatusCreated)
	created := envelopeData(t, decodeJSONMap(t, resp))

	if created["status"] != models.StatusContacted || created["statusColor"] != "blue" {
		t.Fatalf("unexpected status %v/%v", created["status"], created["statusColor"])
	}
	if created["statusRank"] != float64(2) || created["priorityRank"] != float64(3) || created["priorityLabel"] != "High" {
		t.Fatalf("unexpected ranks %+v", created)
	}
	if created["type"] != string(models.CollaborationTypeFinancial) {
		t.Fatalf("expected default type financial, got %v", created["type"])
	}

	id := created["id"].(string)
	resp = performJSONRequest(t, env.app, http.MethodPut, "/api/collaborations/"+id, map[string]any{
		"companyId":   fx.company.ID.String(),
		"projectId":   fx.project.ID.String(),
		"responsible": "Alice",
		"successful":  true,
	}, authHeaders(token))
	assertStatus(t, resp, http.StatusOK)
	updated := envelopeData(t, decodeJSONMap(t, resp))
	if updated["status"] != models.StatusSuccessful || updated["personId"] != nil || updated["priority"] != "low" {
		t.Fatalf("unexpected update %+v", updated)
	}

	resp = performRequest(t, env.app, http.MethodGet, "/api/collaborations/"+id, nil, authHeaders(token))
	assertStatus(t, resp, http.StatusOK)
	fetched := envelopeData(t, decodeJSONMap(t, resp))
	if company, _ := fetched["company"].(map[string]any); company["name"] != "Acme" {
		t.Fatalf("expected preloaded company, got %+v", fetched["company"])
	}
}

func TestCollaborationReferenceChecks(t *testing.T) {
	env := setupTestEnv(t)
	_, token := createTestUser(t, env.db, "member@example.com", models.UserRoleProjectTeamMember)
	fx := setupCollaborationFixture(t, env)
	stranger := createTestPerson(t, env.db, "Stranger", createTestCompany(t, env.db, "Other").ID)

	testCases := []struct {
		name    string
		payload map[string]any
		field   string
		message string
	}{
		{
			name:    "unknown company",
			payload: map[string]any{"companyId": uuid.NewString(), "projectId": fx.project.ID.String(), "responsible": "A"},
			field:   "companyId",
			message: "company does not exist",
		},
		{
			name:    "unknown project",
			payload: map[string]any{"companyId": fx.company.ID.String(), "projectId": uuid.NewString(), "responsible": "A"},
			field:   "projectId",
			message: "project does not exist",
		},
		{
			name:    "person from another company",
			payload: map[string]any{"companyId": fx.company.ID.String(), "projectId": fx.project.ID.String(), "personId": stranger.ID.String(), "responsible": "A"},
			field:   "personId",
			message: "person does not belong to the company",
		},
		{
			name:    "unknown priority",
			payload: map[string]any{"companyId": fx.company.ID.String(), "projectId": fx.project.ID.String(), "responsible": "A", "priority": "urgent"},
			field:   "priority",
			message: "must be one of: low medium high",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := performJSONRequest(t, env.app, http.MethodPost, "/api/collaborations", tc.payload, authHeaders(token))
			assertStatus(t, resp, http.StatusBadRequest)
			fields := fieldErrors(t, decodeJSONMap(t, resp))
			if fields[tc.field] != tc.message {
				t.Fatalf("expected %s error %q, got %+v", tc.field, tc.message, fields)
			}
		})
	}
}

func TestCollaborationListSorting(t *testing.T) {
	env := setupTestEnv(t)
	_, token := createTestUser(t, env.db, "viewer@example.com", models.UserRoleObserver)
	fx := setupCollaborationFixture(t, env)

	createTestCollaboration(t, env.db, models.Collaboration{CompanyID: fx.company.ID, ProjectID: fx.project.ID, Responsible: "none", Priority: models.PriorityMedium})
	createTestCollaboration(t, env.db, models.Collaboration{CompanyID: fx.company.ID, ProjectID: fx.project.ID, Responsible: "won", Successful: boolPtr(true), Priority: models.PriorityLow})
	createTestCollaboration(t, env.db, models.Collaboration{CompanyID: fx.company.ID, ProjectID: fx.project.ID, Responsible: "meeting", Meeting: boolPtr(true), Priority: models.PriorityHigh})
	createTestCollaboration(t, env.db, models.Collaboration{CompanyID: fx.company.ID, ProjectID: fx.project.ID, Responsible: "letter", Letter: true, Priority: "urgent"})

	responsibles := func(path string) []string {
		t.Helper()
		resp := performRequest(t, env.app, http.MethodGet, path, nil, authHeaders(token))
		assertStatus(t, resp, http.StatusOK)
		var out []string
		for _, item := range envelopeList(t, decodeJSONMap(t, resp)) {
			out = append(out, item.(map[string]any)["responsible"].(string))
		}
		return out
	}

	base := "/api/collaborations?projectId=" + fx.project.ID.String()
	if got := fmt.Sprint(responsibles(base + "&sort=status&direction=desc")); got != "[won meeting letter none]" {
		t.Errorf("status desc = %s", got)
	}
	if got := fmt.Sprint(responsibles(base + "&sort=priority")); got != "[letter won none meeting]" {
		t.Errorf("priority asc = %s", got)
	}
	if got := fmt.Sprint(responsibles(base + "&sort=status&search=WON")); got != "[won]" {
		t.Errorf("search = %s", got)
	}

	resp := performRequest(t, env.app, http.MethodGet, base+"&sort=colour", nil, authHeaders(token))
	assertStatus(t, resp, http.StatusBadRequest)
	assertEnvelopeError(t, decodeJSONMap(t, resp), "unsupported sort field")

	resp = performRequest(t, env.app, http.MethodGet, "/api/projects/"+fx.project.ID.String()+"/collaborations?batch=3", nil, authHeaders(token))
	assertStatus(t, resp, http.StatusOK)
	body := decodeJSONMap(t, resp)
	if items := envelopeList(t, body); len(items) != 3 {
		t.Fatalf("expected a batch of 3, got %d", len(items))
	}
	if window, _ := body["window"].(map[string]any); window["hasMore"] != true || window["total"] != float64(4) {
		t.Fatalf("unexpected window %+v", window)
	}
}

func TestSortCollaborationsAmountNilFirst(t *testing.T) {
	views := []collaborationView{
		newCollaborationView(models.Collaboration{Responsible: "big", Amount: floatPtr(900)}),
		newCollaborationView(models.Collaboration{Responsible: "none"}),
		newCollaborationView(models.Collaboration{Responsible: "small", Amount: floatPtr(10)}),
	}

	if !sortCollaborations(views, "amount", "asc") {
		t.Fatal("expected amount to be sortable")
	}
	if views[0].Responsible != "none" || views[1].Responsible != "small" || views[2].Responsible != "big" {
		t.Fatalf("unexpected order %s %s %s", views[0].Responsible, views[1].Responsible, views[2].Responsible)
	}
	if sortCollaborations(views, "colour", "asc") {
		t.Fatal("expected unknown field to be rejected")
	}
}
