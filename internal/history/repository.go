package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"symptom-checker/internal/diagnosis"
)

// Entry is one persisted diagnosis outcome.
type Entry struct {
	ID          uuid.UUID `json:"id"`
	SessionID   string    `json:"session_id"`
	DiseaseCode *string   `json:"disease_code"`
	Confidence  *int      `json:"confidence"`
	Note        string    `json:"note,omitempty"`
	ConcludedAt time.Time `json:"concluded_at"`
}

type Repository interface {
	Record(ctx context.Context, rec diagnosis.HistoryRecord) error
	List(ctx context.Context, limit int) ([]Entry, error)
}

type postgresRepo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &postgresRepo{db: db}
}

func (r *postgresRepo) Record(ctx context.Context, rec diagnosis.HistoryRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO diagnosis_history (id, session_id, disease_code, confidence, note, concluded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.New(), rec.SessionID, rec.DiseaseCode, rec.Confidence, rec.Note, rec.ConcludedAt)
	if err != nil {
		return fmt.Errorf("insert history for session %s: %w", rec.SessionID, err)
	}
	return nil
}

func (r *postgresRepo) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, session_id, disease_code, confidence, note, concluded_at
		FROM diagnosis_history
		ORDER BY concluded_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.DiseaseCode, &e.Confidence, &e.Note, &e.ConcludedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
