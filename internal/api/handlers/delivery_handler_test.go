package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	_ "github.com/mattn/go-sqlite3"
	"hookwatch/internal/engine/dispatch"
	"hookwatch/internal/platform/models"
	"hookwatch/internal/platform/repositories"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	db.SetMaxOpenConns(1)

	schema := `
	CREATE TABLE projects (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		repository TEXT NOT NULL,
		description TEXT,
		webhook_id TEXT,
		webhook_url TEXT,
		delivery_id TEXT UNIQUE,
		created_at INTEGER NOT NULL
	);
	CREATE TABLE events (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		event_type TEXT NOT NULL,
		code_file_path TEXT NOT NULL,
		description TEXT,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at INTEGER NOT NULL
	);
	CREATE TABLE event_logs (
		id TEXT PRIMARY KEY,
		event_id TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		payload TEXT NOT NULL,
		status TEXT NOT NULL,
		error_message TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE TABLE audit_logs (
		id TEXT PRIMARY KEY,
		user_id TEXT,
		action TEXT NOT NULL,
		resource_type TEXT NOT NULL,
		resource_id TEXT NOT NULL,
		metadata TEXT,
		created_at INTEGER NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// newDeliveryFixture wires the real pipeline against an in-memory store:
// one registered project with a delivery id plus the given triggers.
func newDeliveryFixture(t *testing.T, triggers ...*models.Trigger) (*DeliveryHandler, *sql.DB, *models.Project) {
	t.Helper()

	db := setupTestDB(t)
	projectRepo := repositories.NewProjectRepository(db)
	triggerRepo := repositories.NewTriggerRepository(db)
	logRepo := repositories.NewDispatchLogRepository(db)

	project := &models.Project{UserID: "user_1", Name: "CI hooks", Repository: "octocat/hello-world"}
	if err := projectRepo.Create(project); err != nil {
		t.Fatalf("Failed to create project: %v", err)
	}
	if err := projectRepo.SetWebhook(project.Repository, "12345", "https://hooks.example.com/hooks/github?id=tok123", "tok123"); err != nil {
		t.Fatalf("Failed to register webhook: %v", err)
	}

	for _, trig := range triggers {
		trig.ProjectID = project.ID
		if err := triggerRepo.Create(trig); err != nil {
			t.Fatalf("Failed to create trigger: %v", err)
		}
	}

	handler := NewDeliveryHandler(projectRepo, dispatch.NewDispatcher(triggerRepo, logRepo))
	return handler, db, project
}

func postDelivery(handler *DeliveryHandler, url, event, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, url, strings.NewReader(body))
	if event != "" {
		req.Header.Set("X-GitHub-Event", event)
	}
	rr := httptest.NewRecorder()
	handler.Handle(rr, req)
	return rr
}

func countLogRows(t *testing.T, db *sql.DB) int {
	t.Helper()
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM event_logs`).Scan(&count); err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	return count
}

func TestDeliveryHandler_MissingID(t *testing.T) {
	handler, _, _ := newDeliveryFixture(t)

	rr := postDelivery(handler, "/hooks/github", "push", `{}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rr.Code)
	}

	var resp map[string]string
	json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp["error"] != "Missing webhook ID" {
		t.Errorf("Unexpected error message: %q", resp["error"])
	}
}

func TestDeliveryHandler_InvalidPayload(t *testing.T) {
	handler, db, _ := newDeliveryFixture(t)

	// Unparseable body.
	rr := postDelivery(handler, "/hooks/github?id=tok123", "push", `{not json`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad body, got %d", rr.Code)
	}

	// Missing event header.
	rr = postDelivery(handler, "/hooks/github?id=tok123", "", `{"ref":"refs/heads/main"}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing event header, got %d", rr.Code)
	}

	if n := countLogRows(t, db); n != 0 {
		t.Errorf("Expected no log rows, got %d", n)
	}
}

func TestDeliveryHandler_UnknownRegistration(t *testing.T) {
	handler, db, _ := newDeliveryFixture(t, &models.Trigger{EventType: "push", CodeFilePath: "/opt/hooks/a.sh", IsActive: true})

	rr := postDelivery(handler, "/hooks/github?id=abc", "push", `{"ref":"refs/heads/main"}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rr.Code)
	}

	var resp map[string]string
	json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp["error"] != "Project not found" {
		t.Errorf("Unexpected error message: %q", resp["error"])
	}
	if n := countLogRows(t, db); n != 0 {
		t.Errorf("Expected no log rows for unresolved project, got %d", n)
	}
}

func TestDeliveryHandler_NoMatchingTriggers(t *testing.T) {
	handler, db, _ := newDeliveryFixture(t, &models.Trigger{EventType: "pull_request.opened", CodeFilePath: "/opt/hooks/a.sh", IsActive: true})

	rr := postDelivery(handler, "/hooks/github?id=tok123", "push", `{"ref":"refs/heads/main"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200 for zero matches, got %d", rr.Code)
	}

	var resp map[string]string
	json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp["message"] != "No matching event configurations found" {
		t.Errorf("Unexpected message: %q", resp["message"])
	}
	if n := countLogRows(t, db); n != 0 {
		t.Errorf("Expected no log rows, got %d", n)
	}
}

func TestDeliveryHandler_ProcessesMatchedTriggers(t *testing.T) {
	handler, db, _ := newDeliveryFixture(t,
		&models.Trigger{EventType: "pull_request.opened", CodeFilePath: "/opt/hooks/a.sh", IsActive: true},
		&models.Trigger{EventType: "pull_request.opened", CodeFilePath: "/opt/hooks/b.sh", IsActive: true},
		&models.Trigger{EventType: "pull_request.opened", CodeFilePath: "/opt/hooks/c.sh", IsActive: false},
	)

	body := `{"action":"opened","pull_request":{"merged":false}}`
	rr := postDelivery(handler, "/hooks/github?id=tok123", "pull_request", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Message string            `json:"message"`
		Results []dispatch.Result `json:"results"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Message != "Webhook processed" {
		t.Errorf("Unexpected message: %q", resp.Message)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("Expected 2 results (inactive trigger excluded), got %d", len(resp.Results))
	}
	for _, res := range resp.Results {
		if !res.Success {
			t.Errorf("Expected success for %s, got %q", res.EventID, res.Error)
		}
	}

	if n := countLogRows(t, db); n != 2 {
		t.Errorf("Expected 2 log rows, got %d", n)
	}

	var payload string
	if err := db.QueryRow(`SELECT payload FROM event_logs LIMIT 1`).Scan(&payload); err != nil {
		t.Fatalf("Failed to read log payload: %v", err)
	}
	if payload != body {
		t.Errorf("Payload not stored verbatim: %s", payload)
	}
}

func TestDeliveryHandler_StoreFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	projectRepo := repositories.NewProjectRepository(db)
	triggerRepo := repositories.NewTriggerRepository(db)
	logRepo := repositories.NewDispatchLogRepository(db)
	handler := NewDeliveryHandler(projectRepo, dispatch.NewDispatcher(triggerRepo, logRepo))

	mock.ExpectQuery("SELECT (.+) FROM projects WHERE delivery_id = ?").
		WithArgs("tok123").
		WillReturnError(sql.ErrConnDone)

	rr := postDelivery(handler, "/hooks/github?id=tok123", "push", `{"ref":"refs/heads/main"}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", rr.Code)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet sqlmock expectations: %v", err)
	}
}
