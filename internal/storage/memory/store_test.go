package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/street-spirit/shrine-backend/internal/models"
	"github.com/street-spirit/shrine-backend/internal/storage"
)

func TestRedeemConcurrent(t *testing.T) {
	ctx := context.Background()
	store := New()
	user, err := store.CreateAnonymousUser(ctx)
	require.NoError(t, err)
	store.SetCredits(user.ID, 1)

	const workers = 50
	var wg sync.WaitGroup
	results := make(chan error, workers)
	start := make(chan struct{})

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			results <- store.Redeem(ctx, user.ID)
		}()
	}
	close(start)
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, storage.ErrInsufficientCredit)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one redemption should win the single credit")

	balance, err := store.Balance(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, balance)
}

func TestRedeemLedgerOutage(t *testing.T) {
	ctx := context.Background()
	store := New()
	user, err := store.CreateAnonymousUser(ctx)
	require.NoError(t, err)
	store.SetCredits(user.ID, 3)
	store.RedeemErr = assert.AnError

	err = store.Redeem(ctx, user.ID)
	assert.ErrorIs(t, err, storage.ErrLedgerUnavailable)

	balance, err := store.Balance(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, balance, "a failed redemption must not touch the balance")
}

func TestPerformReadingAwardsGoshuinOncePerDay(t *testing.T) {
	ctx := context.Background()
	store := New()
	user, err := store.CreateAnonymousUser(ctx)
	require.NoError(t, err)

	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	first, err := store.PerformReading(ctx, models.Reading{UserID: user.ID, InputText: "first visit"}, now)
	require.NoError(t, err)
	assert.True(t, first.GoshuinAwarded)

	second, err := store.PerformReading(ctx, models.Reading{UserID: user.ID, InputText: "second visit"}, now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.False(t, second.GoshuinAwarded, "same calendar day never yields a second stamp")

	third, err := store.PerformReading(ctx, models.Reading{UserID: user.ID, InputText: "next morning"}, now.Add(24*time.Hour))
	require.NoError(t, err)
	assert.True(t, third.GoshuinAwarded)

	history, err := store.GoshuinHistory(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestPerformReadingUpdatesStreak(t *testing.T) {
	ctx := context.Background()
	store := New()
	user, err := store.CreateAnonymousUser(ctx)
	require.NoError(t, err)

	day1 := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	_, err = store.PerformReading(ctx, models.Reading{UserID: user.ID}, day1)
	require.NoError(t, err)
	_, err = store.PerformReading(ctx, models.Reading{UserID: user.ID}, day1.Add(24*time.Hour))
	require.NoError(t, err)

	got, err := store.FindUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.StreakDays)
	assert.Equal(t, 2, got.ReadingsCount)

	// A gap resets the streak to one.
	_, err = store.PerformReading(ctx, models.Reading{UserID: user.ID}, day1.Add(5*24*time.Hour))
	require.NoError(t, err)
	got, err = store.FindUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.StreakDays)
}

func TestPerformReadingUnknownUser(t *testing.T) {
	store := New()
	_, err := store.PerformReading(context.Background(), models.Reading{UserID: "ghost"}, time.Now())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	store := New()
	_, err := store.CreateUser(ctx, "pilgrim@example.com", "hash")
	require.NoError(t, err)
	_, err = store.CreateUser(ctx, "pilgrim@example.com", "otherhash")
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)
}

func TestMigrateAnonymous(t *testing.T) {
	ctx := context.Background()
	store := New()
	anon, err := store.CreateAnonymousUser(ctx)
	require.NoError(t, err)
	target, err := store.CreateUser(ctx, "pilgrim@example.com", "hash")
	require.NoError(t, err)

	day := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	_, err = store.PerformReading(ctx, models.Reading{UserID: anon.ID, InputText: "anonymous worry"}, day)
	require.NoError(t, err)
	store.SetCredits(anon.ID, 2)
	_, err = store.PostEma(ctx, models.EmaWish{UserID: anon.ID, Content: "peace", IsPublic: true})
	require.NoError(t, err)

	require.NoError(t, store.MigrateAnonymous(ctx, anon.ID, target.ID))

	_, err = store.FindUserByID(ctx, anon.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound, "the anonymous row is folded away")

	assert.Equal(t, 1, store.ReadingCountFor(target.ID))
	balance, err := store.Balance(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, balance)

	merged, err := store.FindUserByID(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, merged.ReadingsCount)

	history, err := store.GoshuinHistory(ctx, target.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestMigrateAnonymousGoshuinCollision(t *testing.T) {
	ctx := context.Background()
	store := New()
	anon, err := store.CreateAnonymousUser(ctx)
	require.NoError(t, err)
	target, err := store.CreateUser(ctx, "pilgrim@example.com", "hash")
	require.NoError(t, err)

	day := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	_, err = store.PerformReading(ctx, models.Reading{UserID: anon.ID}, day)
	require.NoError(t, err)
	_, err = store.PerformReading(ctx, models.Reading{UserID: target.ID}, day)
	require.NoError(t, err)

	require.NoError(t, store.MigrateAnonymous(ctx, anon.ID, target.ID))

	history, err := store.GoshuinHistory(ctx, target.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1, "both users earned the same day's stamp; only one survives")
}

func TestMigrateAnonymousIgnoresNonAnonymousSource(t *testing.T) {
	ctx := context.Background()
	store := New()
	regular, err := store.CreateUser(ctx, "first@example.com", "hash")
	require.NoError(t, err)
	target, err := store.CreateUser(ctx, "second@example.com", "hash")
	require.NoError(t, err)

	require.NoError(t, store.MigrateAnonymous(ctx, regular.ID, target.ID))

	_, err = store.FindUserByID(ctx, regular.ID)
	assert.NoError(t, err, "a registered account is never folded into another")
}

func TestEmaWallOrderingAndLikes(t *testing.T) {
	ctx := context.Background()
	store := New()
	user, err := store.CreateAnonymousUser(ctx)
	require.NoError(t, err)

	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	older, err := store.PostEma(ctx, models.EmaWish{UserID: user.ID, Content: "older", IsPublic: true, CreatedAt: base})
	require.NoError(t, err)
	newer, err := store.PostEma(ctx, models.EmaWish{UserID: user.ID, Content: "newer", IsPublic: true, CreatedAt: base.Add(time.Hour)})
	require.NoError(t, err)
	_, err = store.PostEma(ctx, models.EmaWish{UserID: user.ID, Content: "hidden", IsPublic: false, CreatedAt: base.Add(2 * time.Hour)})
	require.NoError(t, err)

	wall, err := store.RecentEma(ctx, 10)
	require.NoError(t, err)
	require.Len(t, wall, 2)
	assert.Equal(t, newer.ID, wall[0].ID)
	assert.Equal(t, older.ID, wall[1].ID)

	require.NoError(t, store.LikeEma(ctx, older.ID))
	require.NoError(t, store.LikeEma(ctx, older.ID))
	wall, err = store.RecentEma(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, wall[1].LikesCount)

	assert.ErrorIs(t, store.LikeEma(ctx, "missing"), storage.ErrNotFound)
}

func TestZazenMinutes(t *testing.T) {
	ctx := context.Background()
	store := New()
	user, err := store.CreateAnonymousUser(ctx)
	require.NoError(t, err)

	_, err = store.RecordZazen(ctx, models.ZazenSession{UserID: user.ID, CourseID: "beginner", DurationSeconds: 300})
	require.NoError(t, err)
	_, err = store.RecordZazen(ctx, models.ZazenSession{UserID: user.ID, CourseID: "intermediate", DurationSeconds: 900})
	require.NoError(t, err)

	minutes, err := store.ZazenMinutes(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, minutes)
}

func TestDeleteReadingOwnership(t *testing.T) {
	ctx := context.Background()
	store := New()
	owner, err := store.CreateAnonymousUser(ctx)
	require.NoError(t, err)
	other, err := store.CreateAnonymousUser(ctx)
	require.NoError(t, err)

	record, err := store.PerformReading(ctx, models.Reading{UserID: owner.ID}, time.Now())
	require.NoError(t, err)

	assert.ErrorIs(t, store.DeleteReading(ctx, other.ID, record.Reading.ID), storage.ErrNotFound)
	require.NoError(t, store.DeleteReading(ctx, owner.ID, record.Reading.ID))
	assert.Equal(t, 0, store.ReadingCountFor(owner.ID))
}
