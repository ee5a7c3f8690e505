package knowledge

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a requested disease or symptom code does not
// exist in the knowledge base.
var ErrNotFound = errors.New("not found")

// Reader is the read-only contract the diagnosis engine consumes.
type Reader interface {
	ListDiseases(ctx context.Context) ([]Disease, error)
	ListSymptoms(ctx context.Context) ([]Symptom, error)
	RulesFor(ctx context.Context, diseaseCode string) ([]string, error)
	AllRules(ctx context.Context) (map[string][]string, error)
}

// Repository is the full knowledge-base store: the Reader contract plus the
// administrative CRUD surface and snapshot/seed helpers.
type Repository interface {
	Reader

	Snapshot(ctx context.Context) (*Snapshot, error)
	SeedIfEmpty(ctx context.Context, seed *Seed) error

	GetDisease(ctx context.Context, code string) (*Disease, error)
	CreateDisease(ctx context.Context, d Disease) error
	UpdateDisease(ctx context.Context, d Disease) error
	DeleteDisease(ctx context.Context, code string) error

	GetSymptom(ctx context.Context, code string) (*Symptom, error)
	CreateSymptom(ctx context.Context, s Symptom) error
	UpdateSymptom(ctx context.Context, s Symptom) error
	DeleteSymptom(ctx context.Context, code string) error

	SetDiseaseSymptoms(ctx context.Context, diseaseCode string, symptomCodes []string) error
}

type postgresRepo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &postgresRepo{db: db}
}

func (r *postgresRepo) ListDiseases(ctx context.Context) ([]Disease, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT code, name, description, priority FROM diseases ORDER BY priority ASC, code ASC`)
	if err != nil {
		return nil, fmt.Errorf("list diseases: %w", err)
	}
	defer rows.Close()

	var out []Disease
	for rows.Next() {
		var d Disease
		if err := rows.Scan(&d.Code, &d.Name, &d.Description, &d.Priority); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *postgresRepo) GetDisease(ctx context.Context, code string) (*Disease, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT code, name, description, priority FROM diseases WHERE code = $1`, code)

	var d Disease
	if err := row.Scan(&d.Code, &d.Name, &d.Description, &d.Priority); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("disease %s: %w", code, ErrNotFound)
		}
		return nil, err
	}
	return &d, nil
}

func (r *postgresRepo) CreateDisease(ctx context.Context, d Disease) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO diseases (code, name, description, priority) VALUES ($1, $2, $3, $4)`,
		d.Code, d.Name, d.Description, d.Priority)
	if err != nil {
		return fmt.Errorf("create disease %s: %w", d.Code, err)
	}
	return nil
}

func (r *postgresRepo) UpdateDisease(ctx context.Context, d Disease) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE diseases SET name = $2, description = $3, priority = $4 WHERE code = $1`,
		d.Code, d.Name, d.Description, d.Priority)
	if err != nil {
		return fmt.Errorf("update disease %s: %w", d.Code, err)
	}
	return requireRow(res, d.Code)
}

func (r *postgresRepo) DeleteDisease(ctx context.Context, code string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM diseases WHERE code = $1`, code)
	if err != nil {
		return fmt.Errorf("delete disease %s: %w", code, err)
	}
	return requireRow(res, code)
}

func (r *postgresRepo) ListSymptoms(ctx context.Context) ([]Symptom, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT code, question FROM symptoms ORDER BY code ASC`)
	if err != nil {
		return nil, fmt.Errorf("list symptoms: %w", err)
	}
	defer rows.Close()

	var out []Symptom
	for rows.Next() {
		var s Symptom
		if err := rows.Scan(&s.Code, &s.Question); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *postgresRepo) GetSymptom(ctx context.Context, code string) (*Symptom, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT code, question FROM symptoms WHERE code = $1`, code)

	var s Symptom
	if err := row.Scan(&s.Code, &s.Question); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("symptom %s: %w", code, ErrNotFound)
		}
		return nil, err
	}
	return &s, nil
}

func (r *postgresRepo) CreateSymptom(ctx context.Context, s Symptom) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO symptoms (code, question) VALUES ($1, $2)`, s.Code, s.Question)
	if err != nil {
		return fmt.Errorf("create symptom %s: %w", s.Code, err)
	}
	return nil
}

func (r *postgresRepo) UpdateSymptom(ctx context.Context, s Symptom) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE symptoms SET question = $2 WHERE code = $1`, s.Code, s.Question)
	if err != nil {
		return fmt.Errorf("update symptom %s: %w", s.Code, err)
	}
	return requireRow(res, s.Code)
}

func (r *postgresRepo) DeleteSymptom(ctx context.Context, code string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM symptoms WHERE code = $1`, code)
	if err != nil {
		return fmt.Errorf("delete symptom %s: %w", code, err)
	}
	return requireRow(res, code)
}

func (r *postgresRepo) RulesFor(ctx context.Context, diseaseCode string) ([]string, error) {
	if _, err := r.GetDisease(ctx, diseaseCode); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT symptom_code FROM disease_symptoms WHERE disease_code = $1 ORDER BY sort_order ASC, id ASC`,
		diseaseCode)
	if err != nil {
		return nil, fmt.Errorf("rules for %s: %w", diseaseCode, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		out = append(out, code)
	}
	return out, rows.Err()
}

func (r *postgresRepo) AllRules(ctx context.Context) (map[string][]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT disease_code, symptom_code FROM disease_symptoms ORDER BY disease_code ASC, sort_order ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var dc, sc string
		if err := rows.Scan(&dc, &sc); err != nil {
			return nil, err
		}
		out[dc] = append(out[dc], sc)
	}
	return out, rows.Err()
}

// SetDiseaseSymptoms replaces the full rule set of a disease. Every referenced
// symptom must already exist.
func (r *postgresRepo) SetDiseaseSymptoms(ctx context.Context, diseaseCode string, symptomCodes []string) error {
	if _, err := r.GetDisease(ctx, diseaseCode); err != nil {
		return err
	}
	for _, sc := range symptomCodes {
		if _, err := r.GetSymptom(ctx, sc); err != nil {
			return err
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM disease_symptoms WHERE disease_code = $1`, diseaseCode); err != nil {
		return fmt.Errorf("clear rules for %s: %w", diseaseCode, err)
	}
	for idx, sc := range symptomCodes {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO disease_symptoms (disease_code, symptom_code, sort_order) VALUES ($1, $2, $3)`,
			diseaseCode, sc, idx); err != nil {
			return fmt.Errorf("insert rule %s->%s: %w", diseaseCode, sc, err)
		}
	}
	return tx.Commit()
}

// Snapshot reads the whole knowledge base in one pass. The result is the
// consistent view a diagnosis session holds for its lifetime.
func (r *postgresRepo) Snapshot(ctx context.Context) (*Snapshot, error) {
	diseases, err := r.ListDiseases(ctx)
	if err != nil {
		return nil, err
	}
	symptoms, err := r.ListSymptoms(ctx)
	if err != nil {
		return nil, err
	}
	rules, err := r.AllRules(ctx)
	if err != nil {
		return nil, err
	}
	return NewSnapshot(diseases, symptoms, rules), nil
}

// SeedIfEmpty loads the default knowledge base when the diseases table has no
// rows yet. Existing data is never touched.
func (r *postgresRepo) SeedIfEmpty(ctx context.Context, seed *Seed) error {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM diseases`).Scan(&count); err != nil {
		return fmt.Errorf("count diseases: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, d := range seed.Diseases {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO diseases (code, name, description, priority) VALUES ($1, $2, $3, $4)`,
			d.Code, d.Name, d.Description, d.Priority); err != nil {
			return fmt.Errorf("seed disease %s: %w", d.Code, err)
		}
	}
	for _, s := range seed.Symptoms {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO symptoms (code, question) VALUES ($1, $2)`, s.Code, s.Question); err != nil {
			return fmt.Errorf("seed symptom %s: %w", s.Code, err)
		}
	}
	for dc, set := range seed.Rules {
		for idx, sc := range set {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO disease_symptoms (disease_code, symptom_code, sort_order) VALUES ($1, $2, $3)`,
				dc, sc, idx); err != nil {
				return fmt.Errorf("seed rule %s->%s: %w", dc, sc, err)
			}
		}
	}
	return tx.Commit()
}

func requireRow(res sql.Result, code string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", code, ErrNotFound)
	}
	return nil
}
