package repositories

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"hookwatch/internal/platform/models"
)

type DispatchLogRepository struct {
	db *sql.DB
}

func NewDispatchLogRepository(db *sql.DB) *DispatchLogRepository {
	return &DispatchLogRepository{db: db}
}

// Append writes one dispatch log row as a single statement. Rows are never
// updated or deleted by the pipeline.
func (r *DispatchLogRepository) Append(entry *models.DispatchLog) error {
	entry.ID = "dlog_" + uuid.New().String()
	entry.CreatedAt = time.Now().Unix()

	query := `
		INSERT INTO event_logs (id, event_id, payload, status, error_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, entry.ID, entry.EventID, string(entry.Payload), entry.Status, entry.ErrorMessage, entry.CreatedAt)
	return err
}

// ListByTrigger returns a trigger's dispatch logs, newest first.
func (r *DispatchLogRepository) ListByTrigger(eventID string, limit, offset int) ([]*models.DispatchLog, error) {
	query := `
		SELECT id, event_id, payload, status, error_message, created_at
		FROM event_logs
		WHERE event_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`
	rows, err := r.db.Query(query, eventID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.DispatchLog
	for rows.Next() {
		var l models.DispatchLog
		var payload string
		var errorMessage sql.NullString

		if err := rows.Scan(&l.ID, &l.EventID, &payload, &l.Status, &errorMessage, &l.CreatedAt); err != nil {
			return nil, err
		}

		l.Payload = json.RawMessage(payload)
		if errorMessage.Valid {
			l.ErrorMessage = errorMessage.String
		}
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}

// DeleteOlderThan prunes dispatch logs past the retention window. Called by
// the retention worker, never by the pipeline.
func (r *DispatchLogRepository) DeleteOlderThan(cutoff int64) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM event_logs WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
