// Package persistence provides database adapters implementing outbound ports.
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"learning_server/core/domain"
	"learning_server/core/port/out"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const assessmentsSchema = `
	CREATE TABLE IF NOT EXISTS assessments (
		id                        BIGSERIAL PRIMARY KEY,
		user_id                   UUID        NOT NULL,
		dominant_type             TEXT        NOT NULL,
		visual_percentage         INTEGER     NOT NULL DEFAULT 0,
		auditory_percentage       INTEGER     NOT NULL DEFAULT 0,
		kinesthetic_percentage    INTEGER     NOT NULL DEFAULT 0,
		reading_percentage        INTEGER     NOT NULL DEFAULT 0,
		recommended_content_types TEXT[]      NOT NULL DEFAULT '{}',
		created_at                TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_assessments_user_created ON assessments (user_id, created_at DESC);
`

// AssessmentAdapter implements out.AssessmentRepository using PostgreSQL.
type AssessmentAdapter struct {
	db *sqlx.DB
}

var _ out.AssessmentRepository = (*AssessmentAdapter)(nil)

func NewAssessmentAdapter(db *sqlx.DB) *AssessmentAdapter {
	return &AssessmentAdapter{db: db}
}

// EnsureSchema creates the assessments table when it does not exist.
func (a *AssessmentAdapter) EnsureSchema(ctx context.Context) error {
	if _, err := a.db.ExecContext(ctx, assessmentsSchema); err != nil {
		return fmt.Errorf("failed to create assessments table: %w", err)
	}
	return nil
}

type assessmentRow struct {
	ID                      int64          `db:"id"`
	UserID                  uuid.UUID      `db:"user_id"`
	DominantType            string         `db:"dominant_type"`
	VisualPercentage        int            `db:"visual_percentage"`
	AuditoryPercentage      int            `db:"auditory_percentage"`
	KinestheticPercentage   int            `db:"kinesthetic_percentage"`
	ReadingPercentage       int            `db:"reading_percentage"`
	RecommendedContentTypes pq.StringArray `db:"recommended_content_types"`
	CreatedAt               time.Time      `db:"created_at"`
}

func (r *assessmentRow) toEntity() *domain.AssessmentRecord {
	return &domain.AssessmentRecord{
		ID:                      r.ID,
		UserID:                  r.UserID,
		DominantType:            r.DominantType,
		VisualPercentage:        r.VisualPercentage,
		AuditoryPercentage:      r.AuditoryPercentage,
		KinestheticPercentage:   r.KinestheticPercentage,
		ReadingPercentage:       r.ReadingPercentage,
		RecommendedContentTypes: []string(r.RecommendedContentTypes),
		CreatedAt:               r.CreatedAt,
	}
}

// Save inserts record and fills in its ID and CreatedAt.
func (a *AssessmentAdapter) Save(ctx context.Context, record *domain.AssessmentRecord) error {
	const query = `
		INSERT INTO assessments (
			user_id, dominant_type, visual_percentage, auditory_percentage,
			kinesthetic_percentage, reading_percentage, recommended_content_types
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := a.db.QueryRowxContext(ctx, query,
		record.UserID,
		record.DominantType,
		record.VisualPercentage,
		record.AuditoryPercentage,
		record.KinestheticPercentage,
		record.ReadingPercentage,
		pq.StringArray(record.RecommendedContentTypes),
	).Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		return mapError(err)
	}
	return nil
}

// Latest returns the most recent record of userID.
func (a *AssessmentAdapter) Latest(ctx context.Context, userID uuid.UUID) (*domain.AssessmentRecord, error) {
	const query = `
		SELECT id, user_id, dominant_type, visual_percentage, auditory_percentage,
		       kinesthetic_percentage, reading_percentage, recommended_content_types, created_at
		FROM assessments
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	var row assessmentRow
	if err := a.db.GetContext(ctx, &row, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, mapError(err)
	}
	return row.toEntity(), nil
}
