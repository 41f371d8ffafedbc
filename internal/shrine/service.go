// Package shrine orchestrates the reading transaction: credit debit, fortune
// generation, persistence, and the derived streak/goshuin bookkeeping.
package shrine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/street-spirit/shrine-backend/internal/fortune"
	"github.com/street-spirit/shrine-backend/internal/models"
	"github.com/street-spirit/shrine-backend/internal/storage"
)

// ErrEmptyWorry rejects a reading request with no input text.
var ErrEmptyWorry = errors.New("shrine: empty worry")

// Outcome is the user-visible result of one completed reading transaction.
type Outcome struct {
	Reading        models.Reading
	GoshuinAwarded bool
}

// Service ties the ledger, the generator, and the reading store together.
type Service struct {
	store     storage.Store
	generator fortune.Generator
	now       func() time.Time
}

// NewService wires a Service. The clock is injectable for tests; nil means
// time.Now.
func NewService(store storage.Store, generator fortune.Generator, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, generator: generator, now: now}
}

// PerformReading runs the full transaction for one worry.
//
// When paymentConfirmed is false the visitor spends a credit; the debit is
// decided atomically by the ledger before any generation call. When it is true
// the payment was settled externally (checkout redirect) and the debit is
// skipped. Generation failure after a successful debit aborts without a refund;
// the source system behaves the same way and the loss is accepted deliberately.
func (s *Service) PerformReading(ctx context.Context, userID, worry string, paymentConfirmed bool) (Outcome, error) {
	if worry == "" {
		return Outcome{}, ErrEmptyWorry
	}

	if !paymentConfirmed {
		if err := s.store.Redeem(ctx, userID); err != nil {
			return Outcome{}, err
		}
	}

	result, err := s.generator.Generate(ctx, worry)
	if err != nil {
		if !paymentConfirmed {
			log.Printf("shrine: generation failed after debit for user %s: %v", userID, err)
		}
		return Outcome{}, err
	}

	record, err := s.store.PerformReading(ctx, models.Reading{
		UserID:       userID,
		InputText:    worry,
		FortuneLevel: result.Fortune,
		Advice:       result,
		LuckyItem:    result.LuckyItem,
		GodName:      result.GodName,
		IsPaid:       true,
	}, s.now())
	if err != nil {
		log.Printf("shrine: failed to persist reading for user %s: %v", userID, err)
		return Outcome{}, fmt.Errorf("persist reading: %w", err)
	}

	return Outcome{Reading: record.Reading, GoshuinAwarded: record.GoshuinAwarded}, nil
}

// Stats gathers the counters achievements are judged against.
func (s *Service) Stats(ctx context.Context, userID string) (models.UserStats, error) {
	user, err := s.store.FindUserByID(ctx, userID)
	if err != nil {
		return models.UserStats{}, err
	}
	minutes, err := s.store.ZazenMinutes(ctx, userID)
	if err != nil {
		return models.UserStats{}, err
	}
	stamps, err := s.store.GoshuinHistory(ctx, userID)
	if err != nil {
		return models.UserStats{}, err
	}
	return models.UserStats{
		ReadingsCount: user.ReadingsCount,
		ZazenMinutes:  minutes,
		GoshuinCount:  len(stamps),
		StreakDays:    user.StreakDays,
	}, nil
}

// Achievements returns the user's unlocked milestones.
func (s *Service) Achievements(ctx context.Context, userID string) ([]models.Achievement, error) {
	stats, err := s.Stats(ctx, userID)
	if err != nil {
		return nil, err
	}
	return models.Unlocked(stats), nil
}
