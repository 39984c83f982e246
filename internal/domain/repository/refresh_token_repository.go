package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"taskzone/internal/common"
	"taskzone/internal/domain/model"
)

type RefreshTokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	FindByToken(ctx context.Context, token string) (*model.RefreshToken, error)
	DeleteByToken(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type pgRefreshTokenRepository struct {
	db *sql.DB
}

func NewPgRefreshTokenRepository(db *sql.DB) RefreshTokenRepository {
	return &pgRefreshTokenRepository{db: db}
}

func (r *pgRefreshTokenRepository) Create(ctx context.Context, token *model.RefreshToken) error {
	query := `INSERT INTO refresh_tokens (token, user_id, expires_at)
	          VALUES ($1, $2, $3)`
	_, err := r.db.ExecContext(ctx, query, token.Token, token.UserID, token.ExpiresAt)
	if err != nil {
		return fmt.Errorf("pgRefreshTokenRepository.Create: %w", err)
	}
	return nil
}

func (r *pgRefreshTokenRepository) FindByToken(ctx context.Context, token string) (*model.RefreshToken, error) {
	query := `SELECT token, user_id, created_at, expires_at
	          FROM refresh_tokens WHERE token = $1`
	record := &model.RefreshToken{}
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&record.Token, &record.UserID, &record.CreatedAt, &record.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgRefreshTokenRepository.FindByToken: %w", err)
	}
	return record, nil
}

func (r *pgRefreshTokenRepository) DeleteByToken(ctx context.Context, token string) error {
	query := `DELETE FROM refresh_tokens WHERE token = $1`
	if _, err := r.db.ExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("pgRefreshTokenRepository.DeleteByToken: %w", err)
	}
	return nil
}

// DeleteExpired removes records past their expiry. The purge worker calls
// this periodically; the token service also checks expiry explicitly, so a
// late purge never extends a token's life.
func (r *pgRefreshTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM refresh_tokens WHERE expires_at < NOW()`
	res, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("pgRefreshTokenRepository.DeleteExpired: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("pgRefreshTokenRepository.DeleteExpired rows: %w", err)
	}
	return n, nil
}
