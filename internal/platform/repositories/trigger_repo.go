package repositories

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"hookwatch/internal/platform/models"
)

type TriggerRepository struct {
	db *sql.DB
}

func NewTriggerRepository(db *sql.DB) *TriggerRepository {
	return &TriggerRepository{db: db}
}

func (r *TriggerRepository) Create(trigger *models.Trigger) error {
	trigger.ID = "evt_" + uuid.New().String()
	trigger.CreatedAt = time.Now().Unix()

	query := `
		INSERT INTO events (id, project_id, event_type, code_file_path, description, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, trigger.ID, trigger.ProjectID, trigger.EventType, trigger.CodeFilePath, trigger.Description, trigger.IsActive, trigger.CreatedAt)
	return err
}

func (r *TriggerRepository) GetByID(id string) (*models.Trigger, error) {
	query := `SELECT id, project_id, event_type, code_file_path, description, is_active, created_at FROM events WHERE id = ?`
	return scanTrigger(r.db.QueryRow(query, id))
}

func (r *TriggerRepository) ListByProject(projectID string) ([]*models.Trigger, error) {
	query := `
		SELECT id, project_id, event_type, code_file_path, description, is_active, created_at
		FROM events
		WHERE project_id = ?
		ORDER BY created_at DESC
	`
	return r.queryTriggers(query, projectID)
}

// ListActiveByType is the trigger matcher for the dispatch pipeline: exact,
// case-sensitive equality on the canonical event type, active triggers only.
// An empty result is a normal outcome, not an error.
func (r *TriggerRepository) ListActiveByType(projectID, eventType string) ([]*models.Trigger, error) {
	query := `
		SELECT id, project_id, event_type, code_file_path, description, is_active, created_at
		FROM events
		WHERE project_id = ? AND event_type = ? AND is_active = 1
	`
	return r.queryTriggers(query, projectID, eventType)
}

func (r *TriggerRepository) Update(trigger *models.Trigger) error {
	query := `
		UPDATE events
		SET event_type = ?, code_file_path = ?, description = ?, is_active = ?
		WHERE id = ?
	`
	_, err := r.db.Exec(query, trigger.EventType, trigger.CodeFilePath, trigger.Description, trigger.IsActive, trigger.ID)
	return err
}

func (r *TriggerRepository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM events WHERE id = ?`, id)
	return err
}

func (r *TriggerRepository) queryTriggers(query string, args ...interface{}) ([]*models.Trigger, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var triggers []*models.Trigger
	for rows.Next() {
		trigger, err := scanTrigger(rows)
		if err != nil {
			return nil, err
		}
		triggers = append(triggers, trigger)
	}
	return triggers, rows.Err()
}

func scanTrigger(row rowScanner) (*models.Trigger, error) {
	var t models.Trigger
	var description sql.NullString

	err := row.Scan(&t.ID, &t.ProjectID, &t.EventType, &t.CodeFilePath, &description, &t.IsActive, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if description.Valid {
		t.Description = description.String
	}
	return &t, nil
}
