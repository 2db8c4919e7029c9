package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"community_whatsapp_bot/internal/domain/faq"
)

// Custom errors
var ErrFAQNotFound = fmt.Errorf("faq entry not found")

type PostgresFAQRepository struct {
	db *sql.DB
}

func NewPostgresFAQRepository(db *sql.DB) *PostgresFAQRepository {
	return &PostgresFAQRepository{db: db}
}

const faqColumns = `id, question, answer, keywords, category, usage_count, created_at, updated_at`

func scanFAQ(row interface{ Scan(...any) error }) (*faq.Entry, error) {
	e := &faq.Entry{}
	var rawKeywords []byte
	err := row.Scan(&e.ID, &e.Question, &e.Answer, &rawKeywords, &e.Category, &e.UsageCount, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(rawKeywords) > 0 {
		if err := json.Unmarshal(rawKeywords, &e.Keywords); err != nil {
			// Malformed keyword payloads degrade to no keywords rather than
			// failing the whole entry.
			e.Keywords = nil
		}
	}
	return e, nil
}

func marshalKeywords(keywords []string) ([]byte, error) {
	if keywords == nil {
		keywords = []string{}
	}
	return json.Marshal(keywords)
}

func (r *PostgresFAQRepository) Create(ctx context.Context, e *faq.Entry) error {
	raw, err := marshalKeywords(e.Keywords)
	if err != nil {
		return fmt.Errorf("error encoding faq keywords: %w", err)
	}
	if e.Category == "" {
		e.Category = "general"
	}

	query := `INSERT INTO faq (question, answer, keywords, category)
               VALUES ($1, $2, $3, $4)
               RETURNING id, usage_count, created_at, updated_at`
	err = r.db.QueryRowContext(ctx, query, e.Question, e.Answer, raw, e.Category).
		Scan(&e.ID, &e.UsageCount, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating faq entry: %w", err)
	}
	return nil
}

func (r *PostgresFAQRepository) Update(ctx context.Context, e *faq.Entry) error {
	raw, err := marshalKeywords(e.Keywords)
	if err != nil {
		return fmt.Errorf("error encoding faq keywords: %w", err)
	}

	query := `UPDATE faq
               SET question = $1, answer = $2, keywords = $3, category = $4, updated_at = NOW()
               WHERE id = $5
               RETURNING updated_at`
	err = r.db.QueryRowContext(ctx, query, e.Question, e.Answer, raw, e.Category, e.ID).Scan(&e.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrFAQNotFound
		}
		return fmt.Errorf("error updating faq entry: %w", err)
	}
	return nil
}

func (r *PostgresFAQRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM faq WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting faq entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking deleted faq rows: %w", err)
	}
	if affected == 0 {
		return ErrFAQNotFound
	}
	return nil
}

func (r *PostgresFAQRepository) GetByID(ctx context.Context, id int64) (*faq.Entry, error) {
	query := `SELECT ` + faqColumns + ` FROM faq WHERE id = $1`
	e, err := scanFAQ(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrFAQNotFound
		}
		return nil, fmt.Errorf("error getting faq entry by ID: %w", err)
	}
	return e, nil
}

func (r *PostgresFAQRepository) ListAll(ctx context.Context, category string) ([]*faq.Entry, error) {
	if category != "" {
		query := `SELECT ` + faqColumns + ` FROM faq WHERE category = $1 ORDER BY usage_count DESC, id`
		return r.queryEntries(ctx, "error listing faq entries by category", query, category)
	}
	query := `SELECT ` + faqColumns + ` FROM faq ORDER BY usage_count DESC, id`
	return r.queryEntries(ctx, "error listing faq entries", query)
}

func (r *PostgresFAQRepository) Search(ctx context.Context, term string) ([]*faq.Entry, error) {
	query := `SELECT ` + faqColumns + ` FROM faq
               WHERE question ILIKE $1 OR answer ILIKE $1 OR keywords::text ILIKE $1
               ORDER BY usage_count DESC, id`
	return r.queryEntries(ctx, "error searching faq entries", query, "%"+term+"%")
}

func (r *PostgresFAQRepository) IncrementUsage(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE faq SET usage_count = usage_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error incrementing faq usage count: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking incremented faq rows: %w", err)
	}
	if affected == 0 {
		return ErrFAQNotFound
	}
	return nil
}

func (r *PostgresFAQRepository) Stats(ctx context.Context) (*faq.Stats, error) {
	query := `SELECT COUNT(*), COALESCE(SUM(usage_count), 0), COALESCE(AVG(usage_count), 0) FROM faq`
	s := &faq.Stats{}
	err := r.db.QueryRowContext(ctx, query).Scan(&s.TotalEntries, &s.TotalUsage, &s.AverageUsage)
	if err != nil {
		return nil, fmt.Errorf("error getting faq statistics: %w", err)
	}
	return s, nil
}

func (r *PostgresFAQRepository) TopByUsage(ctx context.Context, limit int) ([]*faq.Entry, error) {
	query := `SELECT ` + faqColumns + ` FROM faq ORDER BY usage_count DESC, id LIMIT $1`
	return r.queryEntries(ctx, "error listing top faq entries", query, limit)
}

func (r *PostgresFAQRepository) queryEntries(ctx context.Context, errPrefix, query string, args ...any) ([]*faq.Entry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errPrefix, err)
	}
	defer rows.Close()

	entries := make([]*faq.Entry, 0)
	for rows.Next() {
		e, err := scanFAQ(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scanning row: %w", errPrefix, err)
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: iterating rows: %w", errPrefix, err)
	}
	return entries, nil
}
