package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/synthetix-ai/drafter/internal/domain"
	"github.com/synthetix-ai/drafter/internal/repository"
	"github.com/synthetix-ai/drafter/pkg/logger"
)

type PgxRepository struct {
	pool   *pgxpool.Pool
	logger logger.Logger
}

func NewPgxRepository(pool *pgxpool.Pool, logger logger.Logger) *PgxRepository {
	return &PgxRepository{
		pool:   pool,
		logger: logger,
	}
}

func (r *PgxRepository) Create(ctx context.Context, b domain.Batch) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	createdAt := b.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query, args, err := repository.SqBuilder.
		Insert("batches").
		Columns("id", "idea", "tone", "provider", "created_at").
		Values(b.ID, b.Idea, string(b.Tone), b.Provider, createdAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: build batch insert: %v", repository.ErrBadQuery, err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: %v", ErrCannotCreate, err)
	}

	if len(b.Drafts) > 0 {
		builder := repository.SqBuilder.
			Insert("batch_drafts").
			Columns("batch_id", "position", "platform", "content", "suggested_aspect_ratio")
		for i, d := range b.Drafts {
			builder = builder.Values(b.ID, i, string(d.Platform), d.Content, string(d.SuggestedAspectRatio))
		}
		query, args, err = builder.ToSql()
		if err != nil {
			return fmt.Errorf("%w: build drafts insert: %v", repository.ErrBadQuery, err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("%w: %v", ErrCannotCreate, err)
		}
	}

	return tx.Commit(ctx)
}

func (r *PgxRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Batch, error) {
	query := `
		SELECT id, idea, tone, provider, created_at
		FROM batches
		WHERE id = $1
	`

	var b domain.Batch
	var tone string
	err := r.pool.QueryRow(ctx, query, id).Scan(&b.ID, &b.Idea, &tone, &b.Provider, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get batch by id: %w", err)
	}
	b.Tone = domain.Tone(tone)

	drafts, err := r.draftsFor(ctx, id)
	if err != nil {
		return nil, err
	}
	b.Drafts = drafts

	return &b, nil
}

func (r *PgxRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Batch, error) {
	query := `
		SELECT id, idea, tone, provider, created_at
		FROM batches
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent batches: %w", err)
	}
	defer rows.Close()

	var batches []*domain.Batch
	for rows.Next() {
		var b domain.Batch
		var tone string
		if err := rows.Scan(&b.ID, &b.Idea, &tone, &b.Provider, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan batch row: %w", err)
		}
		b.Tone = domain.Tone(tone)
		batches = append(batches, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating batch rows: %w", err)
	}

	for _, b := range batches {
		drafts, err := r.draftsFor(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		b.Drafts = drafts
	}

	return batches, nil
}

func (r *PgxRepository) draftsFor(ctx context.Context, id uuid.UUID) ([]domain.DraftSeed, error) {
	query := `
		SELECT platform, content, suggested_aspect_ratio
		FROM batch_drafts
		WHERE batch_id = $1
		ORDER BY position
	`

	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query batch drafts: %w", err)
	}
	defer rows.Close()

	var drafts []domain.DraftSeed
	for rows.Next() {
		var platform, content, ratio string
		if err := rows.Scan(&platform, &content, &ratio); err != nil {
			return nil, fmt.Errorf("failed to scan draft row: %w", err)
		}
		drafts = append(drafts, domain.DraftSeed{
			Platform:             domain.Platform(platform),
			Content:              content,
			SuggestedAspectRatio: domain.AspectRatio(ratio),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating draft rows: %w", err)
	}

	return drafts, nil
}

func (r *PgxRepository) CleanupOldRecords(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)

	tag, err := r.pool.Exec(ctx, `DELETE FROM batches WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old batches: %w", err)
	}

	r.logger.Info("Cleaned up old batches", "rows_deleted", tag.RowsAffected(), "cutoff", cutoff)
	return tag.RowsAffected(), nil
}
