// Package pg implements the profile directory on Postgres.
package pg

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sgarciam/vibra/internal/store"
)

const uniqueViolation = "23505"

type Store struct{ pool *pgxpool.Pool }

// Config tunes the underlying pool.
type Config struct {
	MaxOpenConns    int
	ConnMaxLifetime string
}

func New(ctx context.Context, dsn string, cfg Config) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		pcfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime != "" {
		if d, err := time.ParseDuration(cfg.ConnMaxLifetime); err == nil {
			pcfg.MaxConnLifetime = d
		}
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// Close closes the pool (idempotent).
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// Ping verifies connectivity, for readiness checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) ProfileByID(ctx context.Context, id string) (*store.Profile, error) {
	const q = `
		SELECT id, COALESCE(username,''), COALESCE(gender,''), COALESCE(avatar_url,''), updated_at
		FROM profiles
		WHERE id = $1`

	var p store.Profile
	err := s.pool.QueryRow(ctx, q, id).Scan(&p.ID, &p.Username, &p.Gender, &p.AvatarURL, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) ProfileIDByUsername(ctx context.Context, username string) (string, error) {
	const q = `SELECT id FROM profiles WHERE username = $1`

	var id string
	err := s.pool.QueryRow(ctx, q, username).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateProfile(ctx context.Context, id string, up store.ProfileUpdate) error {
	const q = `
		UPDATE profiles
		SET username = $2,
		    gender = $3,
		    avatar_url = COALESCE($4, avatar_url),
		    updated_at = $5
		WHERE id = $1`

	tag, err := s.pool.Exec(ctx, q, id, up.Username, up.Gender, up.AvatarURL, up.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return store.ErrUsernameTaken
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// insertMediaSQL is package level so the schema tests can cross-check its
// column list against the embedded migrations.
const insertMediaSQL = `
		INSERT INTO media (id, user_id, bucket_name, file_path, file_name, file_size, mime_type, is_public, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())`

func (s *Store) InsertMedia(ctx context.Context, m store.Media) error {
	_, err := s.pool.Exec(ctx, insertMediaSQL, m.ID, m.UserID, m.Bucket, m.Path, m.Name, m.Size, m.MimeType, m.Public)
	return err
}
