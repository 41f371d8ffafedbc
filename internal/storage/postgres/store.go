package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/street-spirit/shrine-backend/internal/models"
	"github.com/street-spirit/shrine-backend/internal/storage"
)

// Ensure Store satisfies the aggregate storage interface at compile time.
var _ storage.Store = (*Store)(nil)

// Store provides Postgres-backed persistence for the shrine.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store and runs migrations.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			email TEXT UNIQUE,
			is_anonymous BOOLEAN NOT NULL DEFAULT TRUE,
			readings_count INTEGER NOT NULL DEFAULT 0,
			streak_days INTEGER NOT NULL DEFAULT 0,
			last_active_date DATE,
			password_hash TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS user_credits (
			user_id UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			credits INTEGER NOT NULL DEFAULT 0 CHECK (credits >= 0),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS readings (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			input_text TEXT NOT NULL,
			fortune_level TEXT NOT NULL,
			advice_json JSONB NOT NULL,
			lucky_item TEXT NOT NULL DEFAULT '',
			god_name TEXT NOT NULL DEFAULT '',
			god_image_url TEXT,
			is_paid BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS readings_user_idx ON readings (user_id, created_at DESC);`,
		`CREATE TABLE IF NOT EXISTS goshuin_entries (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			awarded_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			awarded_on DATE NOT NULL,
			design_id TEXT NOT NULL,
			UNIQUE (user_id, awarded_on)
		);`,
		`CREATE TABLE IF NOT EXISTS ema_offerings (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			content TEXT NOT NULL,
			is_public BOOLEAN NOT NULL DEFAULT TRUE,
			likes_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS ema_public_idx ON ema_offerings (is_public, created_at DESC);`,
		`CREATE TABLE IF NOT EXISTS zazen_sessions (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			course_id TEXT NOT NULL,
			duration_seconds INTEGER NOT NULL,
			completed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

const userColumns = `id, email, is_anonymous, readings_count, streak_days, last_active_date::text, created_at, password_hash`

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(&user.ID, &user.Email, &user.IsAnonymous, &user.ReadingsCount, &user.StreakDays, &user.LastActiveDate, &user.CreatedAt, &user.PasswordHash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// CreateAnonymousUser inserts a fresh anonymous identity with an empty ledger row.
func (s *Store) CreateAnonymousUser(ctx context.Context) (models.User, error) {
	id := uuid.NewString()
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `INSERT INTO users (id, is_anonymous) VALUES ($1, TRUE) RETURNING `+userColumns, id)
	user, err := scanUser(row)
	if err != nil {
		return models.User{}, err
	}
	if _, err := tx.Exec(ctx, `INSERT INTO user_credits (user_id, credits) VALUES ($1, 0)`, id); err != nil {
		return models.User{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// CreateUser inserts a registered user row.
func (s *Store) CreateUser(ctx context.Context, email, passwordHash string) (models.User, error) {
	id := uuid.NewString()
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `INSERT INTO users (id, email, is_anonymous, password_hash) VALUES ($1, $2, FALSE, $3) RETURNING `+userColumns, id, email, passwordHash)
	user, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, err
	}
	if _, err := tx.Exec(ctx, `INSERT INTO user_credits (user_id, credits) VALUES ($1, 0)`, id); err != nil {
		return models.User{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// FindUserByID fetches a user by id.
func (s *Store) FindUserByID(ctx context.Context, id string) (models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// FindUserByEmail fetches a registered user by email.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// MigrateAnonymous reassigns an anonymous identity's history to the target user
// and discards the anonymous identity. Runs as one transaction.
func (s *Store) MigrateAnonymous(ctx context.Context, anonymousID, targetID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var isAnon bool
	var count int
	err = tx.QueryRow(ctx, `SELECT is_anonymous, readings_count FROM users WHERE id = $1 FOR UPDATE`, anonymousID).Scan(&isAnon, &count)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil // already migrated or never existed
	}
	if err != nil {
		return err
	}
	if !isAnon {
		return nil
	}

	if _, err := tx.Exec(ctx, `UPDATE readings SET user_id = $1 WHERE user_id = $2`, targetID, anonymousID); err != nil {
		return err
	}
	// Drop stamps that would collide with a day the target already visited.
	if _, err := tx.Exec(ctx, `DELETE FROM goshuin_entries g WHERE g.user_id = $1
		AND EXISTS (SELECT 1 FROM goshuin_entries t WHERE t.user_id = $2 AND t.awarded_on = g.awarded_on)`, anonymousID, targetID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE goshuin_entries SET user_id = $1 WHERE user_id = $2`, targetID, anonymousID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE ema_offerings SET user_id = $1 WHERE user_id = $2`, targetID, anonymousID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE zazen_sessions SET user_id = $1 WHERE user_id = $2`, targetID, anonymousID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE users SET readings_count = readings_count + $1 WHERE id = $2`, count, targetID); err != nil {
		return err
	}
	// Fold any unspent credits into the target's ledger; the anonymous ledger
	// row disappears with the cascade below.
	if _, err := tx.Exec(ctx, `UPDATE user_credits t SET credits = t.credits + s.credits, updated_at = NOW()
		FROM user_credits s WHERE t.user_id = $1 AND s.user_id = $2`, targetID, anonymousID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, anonymousID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Balance returns the user's current credit count.
func (s *Store) Balance(ctx context.Context, userID string) (int, error) {
	var credits int
	err := s.pool.QueryRow(ctx, `SELECT credits FROM user_credits WHERE user_id = $1`, userID).Scan(&credits)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", storage.ErrLedgerUnavailable, err)
	}
	return credits, nil
}

// Redeem spends one credit. The check and decrement are a single statement, so
// concurrent redeems against a balance of one cannot both succeed.
func (s *Store) Redeem(ctx context.Context, userID string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE user_credits SET credits = credits - 1, updated_at = NOW()
		WHERE user_id = $1 AND credits >= 1`, userID)
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrLedgerUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrInsufficientCredit
	}
	return nil
}

// Grant adds credits to a user's ledger. Called from the payment webhook only.
func (s *Store) Grant(ctx context.Context, userID string, amount int) error {
	tag, err := s.pool.Exec(ctx, `INSERT INTO user_credits (user_id, credits) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET credits = user_credits.credits + EXCLUDED.credits, updated_at = NOW()`, userID, amount)
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrLedgerUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// PerformReading persists a fortune event and its derived bookkeeping as one
// transaction: the reading row, the visit counter, the streak, and today's
// goshuin stamp commit together or not at all.
func (s *Store) PerformReading(ctx context.Context, reading models.Reading, now time.Time) (storage.ReadingRecord, error) {
	advice, err := json.Marshal(reading.Advice)
	if err != nil {
		return storage.ReadingRecord{}, fmt.Errorf("marshal advice: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return storage.ReadingRecord{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if reading.ID == "" {
		reading.ID = uuid.NewString()
	}
	reading.CreatedAt = now
	if _, err := tx.Exec(ctx, `INSERT INTO readings (id, user_id, input_text, fortune_level, advice_json, lucky_item, god_name, god_image_url, is_paid, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		reading.ID, reading.UserID, reading.InputText, reading.FortuneLevel, advice,
		reading.LuckyItem, reading.GodName, reading.GodImageURL, reading.IsPaid, reading.CreatedAt); err != nil {
		return storage.ReadingRecord{}, fmt.Errorf("insert reading: %w", err)
	}

	var streak int
	var lastActive *string
	err = tx.QueryRow(ctx, `SELECT streak_days, last_active_date::text FROM users WHERE id = $1 FOR UPDATE`, reading.UserID).Scan(&streak, &lastActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.ReadingRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.ReadingRecord{}, err
	}
	newStreak, today := storage.NextStreak(lastActive, streak, now)
	if _, err := tx.Exec(ctx, `UPDATE users SET readings_count = readings_count + 1, streak_days = $1, last_active_date = $2 WHERE id = $3`,
		newStreak, today, reading.UserID); err != nil {
		return storage.ReadingRecord{}, err
	}

	tag, err := tx.Exec(ctx, `INSERT INTO goshuin_entries (id, user_id, awarded_at, awarded_on, design_id)
		VALUES ($1, $2, $3, $4, $5) ON CONFLICT (user_id, awarded_on) DO NOTHING`,
		uuid.NewString(), reading.UserID, now, today, models.DefaultGoshuinDesign)
	if err != nil {
		return storage.ReadingRecord{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return storage.ReadingRecord{}, err
	}
	return storage.ReadingRecord{Reading: reading, GoshuinAwarded: tag.RowsAffected() == 1}, nil
}

// ListReadings returns the user's readings, newest first.
func (s *Store) ListReadings(ctx context.Context, userID string) ([]models.Reading, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, user_id, input_text, fortune_level, advice_json, lucky_item, god_name, god_image_url, is_paid, created_at
		FROM readings WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Reading
	for rows.Next() {
		var r models.Reading
		var advice []byte
		if err := rows.Scan(&r.ID, &r.UserID, &r.InputText, &r.FortuneLevel, &advice, &r.LuckyItem, &r.GodName, &r.GodImageURL, &r.IsPaid, &r.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(advice, &r.Advice); err != nil {
			return nil, fmt.Errorf("unmarshal advice for reading %s: %w", r.ID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteReading purifies a reading. Owner-only.
func (s *Store) DeleteReading(ctx context.Context, userID, readingID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM readings WHERE id = $1 AND user_id = $2`, readingID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// GoshuinHistory returns the user's collected stamps, newest first.
func (s *Store) GoshuinHistory(ctx context.Context, userID string) ([]models.GoshuinEntry, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, user_id, awarded_at, design_id FROM goshuin_entries
		WHERE user_id = $1 ORDER BY awarded_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.GoshuinEntry
	for rows.Next() {
		var e models.GoshuinEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.AwardedAt, &e.DesignID); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// RecentEma returns the newest public wishes for the wall.
func (s *Store) RecentEma(ctx context.Context, limit int) ([]models.EmaWish, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, user_id, content, is_public, likes_count, created_at
		FROM ema_offerings WHERE is_public ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.EmaWish
	for rows.Next() {
		var w models.EmaWish
		if err := rows.Scan(&w.ID, &w.UserID, &w.Content, &w.IsPublic, &w.LikesCount, &w.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// PostEma hangs a new wish on the wall.
func (s *Store) PostEma(ctx context.Context, wish models.EmaWish) (models.EmaWish, error) {
	if wish.ID == "" {
		wish.ID = uuid.NewString()
	}
	err := s.pool.QueryRow(ctx, `INSERT INTO ema_offerings (id, user_id, content, is_public, likes_count)
		VALUES ($1, $2, $3, $4, $5) RETURNING created_at`,
		wish.ID, wish.UserID, wish.Content, wish.IsPublic, wish.LikesCount).Scan(&wish.CreatedAt)
	if err != nil {
		return models.EmaWish{}, err
	}
	return wish, nil
}

// LikeEma bumps a wish's like counter.
func (s *Store) LikeEma(ctx context.Context, wishID string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE ema_offerings SET likes_count = likes_count + 1 WHERE id = $1`, wishID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// RecordZazen stores a naturally completed meditation session.
func (s *Store) RecordZazen(ctx context.Context, session models.ZazenSession) (models.ZazenSession, error) {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	err := s.pool.QueryRow(ctx, `INSERT INTO zazen_sessions (id, user_id, course_id, duration_seconds)
		VALUES ($1, $2, $3, $4) RETURNING completed_at`,
		session.ID, session.UserID, session.CourseID, session.DurationSeconds).Scan(&session.CompletedAt)
	if err != nil {
		return models.ZazenSession{}, err
	}
	return session, nil
}

// ZazenMinutes returns the user's total completed meditation minutes.
func (s *Store) ZazenMinutes(ctx context.Context, userID string) (int, error) {
	var seconds int
	err := s.pool.QueryRow(ctx, `SELECT COALESCE(SUM(duration_seconds), 0) FROM zazen_sessions WHERE user_id = $1`, userID).Scan(&seconds)
	if err != nil {
		return 0, err
	}
	return seconds / 60, nil
}
