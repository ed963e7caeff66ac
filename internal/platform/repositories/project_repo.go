package repositories

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"hookwatch/internal/platform/models"
)

var ErrProjectNotFound = errors.New("no project registered for repository")

type ProjectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(project *models.Project) error {
	project.ID = "proj_" + uuid.New().String()
	project.CreatedAt = time.Now().Unix()

	query := `
		INSERT INTO projects (id, user_id, name, repository, description, webhook_id, webhook_url, delivery_id, created_at)
		VALUES (?, ?, ?, ?, ?, NULL, NULL, NULL, ?)
	`
	_, err := r.db.Exec(query, project.ID, project.UserID, project.Name, project.Repository, project.Description, project.CreatedAt)
	return err
}

func (r *ProjectRepository) GetByID(id string) (*models.Project, error) {
	query := `SELECT id, user_id, name, repository, description, webhook_id, webhook_url, delivery_id, created_at FROM projects WHERE id = ?`
	return scanProject(r.db.QueryRow(query, id))
}

// GetByDeliveryID resolves which project an inbound delivery belongs to.
// The delivery id is the unique token embedded in the webhook URL handed
// to GitHub at registration time.
func (r *ProjectRepository) GetByDeliveryID(deliveryID string) (*models.Project, error) {
	query := `SELECT id, user_id, name, repository, description, webhook_id, webhook_url, delivery_id, created_at FROM projects WHERE delivery_id = ?`
	return scanProject(r.db.QueryRow(query, deliveryID))
}

func (r *ProjectRepository) List(userID string) ([]*models.Project, error) {
	query := `
		SELECT id, user_id, name, repository, description, webhook_id, webhook_url, delivery_id, created_at
		FROM projects
		WHERE user_id = ?
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

func (r *ProjectRepository) Update(project *models.Project) error {
	query := `UPDATE projects SET name = ?, description = ? WHERE id = ?`
	_, err := r.db.Exec(query, project.Name, project.Description, project.ID)
	return err
}

// SetWebhook records a successful GitHub registration. It is keyed by the
// repository field, matching how the registrar identifies the project.
// Returns ErrProjectNotFound when no project row matches the repository.
func (r *ProjectRepository) SetWebhook(repository, webhookID, webhookURL, deliveryID string) error {
	query := `UPDATE projects SET webhook_id = ?, webhook_url = ?, delivery_id = ? WHERE repository = ?`
	result, err := r.db.Exec(query, webhookID, webhookURL, deliveryID, repository)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProjectNotFound
	}
	return nil
}

// Delete removes the project; triggers and their dispatch logs cascade at
// the schema level.
func (r *ProjectRepository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM projects WHERE id = ?`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProject(row rowScanner) (*models.Project, error) {
	var p models.Project
	var description, webhookID, webhookURL, deliveryID sql.NullString

	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Repository, &description, &webhookID, &webhookURL, &deliveryID, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if description.Valid {
		p.Description = description.String
	}
	if webhookID.Valid {
		p.WebhookID = &webhookID.String
	}
	if webhookURL.Valid {
		p.WebhookURL = &webhookURL.String
	}
	if deliveryID.Valid {
		p.DeliveryID = &deliveryID.String
	}

	return &p, nil
}
