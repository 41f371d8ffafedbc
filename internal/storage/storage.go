package storage

import (
	"context"
	"errors"
	"time"

	"github.com/street-spirit/shrine-backend/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// ErrInsufficientCredit is returned when a debit finds no credit to spend.
// The ledger fails closed: a transient backend fault is ErrLedgerUnavailable,
// never a silent InsufficientCredit.
var ErrInsufficientCredit = errors.New("insufficient credit")

// ErrLedgerUnavailable wraps transient credit-backend faults. Callers must not
// proceed and must not treat it as a rejected debit.
var ErrLedgerUnavailable = errors.New("credit ledger unavailable")

// UserStore captures identity persistence needed by the auth handlers.
type UserStore interface {
	CreateAnonymousUser(ctx context.Context) (models.User, error)
	CreateUser(ctx context.Context, email, passwordHash string) (models.User, error)
	FindUserByID(ctx context.Context, id string) (models.User, error)
	FindUserByEmail(ctx context.Context, email string) (models.User, error)
	// MigrateAnonymous reassigns every row owned by the anonymous identity to the
	// target user, folds its remaining credits into the target's ledger, and
	// discards the anonymous user. A missing or non-anonymous source is a no-op.
	MigrateAnonymous(ctx context.Context, anonymousID, targetID string) error
}

// CreditStore is the credit ledger. Redeem's check-and-decrement is atomic at
// the backend; concurrent redeems against a balance of one yield one success.
type CreditStore interface {
	Balance(ctx context.Context, userID string) (int, error)
	Redeem(ctx context.Context, userID string) error
	// Grant is invoked by the payment webhook only, never by a client path.
	Grant(ctx context.Context, userID string, amount int) error
}

// ReadingRecord carries the outcome of the atomic reading transaction.
type ReadingRecord struct {
	Reading        models.Reading
	GoshuinAwarded bool
}

// ReadingStore persists fortune events.
type ReadingStore interface {
	// PerformReading runs the reading persistence as one transaction: insert the
	// reading row, bump readings_count, recompute the streak against now, and
	// award today's goshuin if none exists. Partial application is impossible.
	PerformReading(ctx context.Context, reading models.Reading, now time.Time) (ReadingRecord, error)
	ListReadings(ctx context.Context, userID string) ([]models.Reading, error)
	// DeleteReading purifies a reading. Deleting another user's reading or a
	// missing one returns ErrNotFound.
	DeleteReading(ctx context.Context, userID, readingID string) error
}

// GoshuinStore exposes the visit-stamp book.
type GoshuinStore interface {
	GoshuinHistory(ctx context.Context, userID string) ([]models.GoshuinEntry, error)
}

// EmaStore persists wish plaques.
type EmaStore interface {
	RecentEma(ctx context.Context, limit int) ([]models.EmaWish, error)
	PostEma(ctx context.Context, wish models.EmaWish) (models.EmaWish, error)
	LikeEma(ctx context.Context, wishID string) error
}

// ZazenStore records completed meditation sessions.
type ZazenStore interface {
	RecordZazen(ctx context.Context, session models.ZazenSession) (models.ZazenSession, error)
	ZazenMinutes(ctx context.Context, userID string) (int, error)
}

// Store aggregates every persistence concern of the shrine.
type Store interface {
	UserStore
	CreditStore
	ReadingStore
	GoshuinStore
	EmaStore
	ZazenStore
}
