// Package memory provides a mutex-guarded in-memory implementation of the
// storage interfaces for handler and service tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/street-spirit/shrine-backend/internal/models"
	"github.com/street-spirit/shrine-backend/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps everything in maps. Zero value is not usable; call New.
type Store struct {
	mu       sync.Mutex
	users    map[string]models.User
	credits  map[string]int
	readings map[string]models.Reading
	goshuin  map[string]map[string]models.GoshuinEntry // userID -> day -> entry
	ema      []models.EmaWish
	zazen    []models.ZazenSession

	// RedeemErr, when set, makes Redeem fail as a transient ledger outage.
	RedeemErr error
}

// New returns an empty store.
func New() *Store {
	return &Store{
		users:    make(map[string]models.User),
		credits:  make(map[string]int),
		readings: make(map[string]models.Reading),
		goshuin:  make(map[string]map[string]models.GoshuinEntry),
	}
}

func (s *Store) CreateAnonymousUser(_ context.Context) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := models.User{ID: uuid.NewString(), IsAnonymous: true, CreatedAt: time.Now()}
	s.users[user.ID] = user
	s.credits[user.ID] = 0
	return user, nil
}

func (s *Store) CreateUser(_ context.Context, email, passwordHash string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email != nil && *u.Email == email {
			return models.User{}, storage.ErrAlreadyExists
		}
	}
	user := models.User{ID: uuid.NewString(), Email: &email, PasswordHash: passwordHash, CreatedAt: time.Now()}
	s.users[user.ID] = user
	s.credits[user.ID] = 0
	return user, nil
}

func (s *Store) FindUserByID(_ context.Context, id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return user, nil
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email != nil && *u.Email == email {
			return u, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

func (s *Store) MigrateAnonymous(_ context.Context, anonymousID, targetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	src, ok := s.users[anonymousID]
	if !ok || !src.IsAnonymous {
		return nil
	}
	target, ok := s.users[targetID]
	if !ok {
		return storage.ErrNotFound
	}

	for id, r := range s.readings {
		if r.UserID == anonymousID {
			r.UserID = targetID
			s.readings[id] = r
		}
	}
	for day, entry := range s.goshuin[anonymousID] {
		if _, taken := s.goshuin[targetID][day]; !taken {
			entry.UserID = targetID
			s.ensureGoshuin(targetID)[day] = entry
		}
	}
	delete(s.goshuin, anonymousID)
	for i, w := range s.ema {
		if w.UserID == anonymousID {
			s.ema[i].UserID = targetID
		}
	}
	for i, z := range s.zazen {
		if z.UserID == anonymousID {
			s.zazen[i].UserID = targetID
		}
	}
	target.ReadingsCount += src.ReadingsCount
	s.users[targetID] = target
	s.credits[targetID] += s.credits[anonymousID]
	delete(s.credits, anonymousID)
	delete(s.users, anonymousID)
	return nil
}

func (s *Store) Balance(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.credits[userID], nil
}

func (s *Store) Redeem(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.RedeemErr != nil {
		return fmt.Errorf("%w: %v", storage.ErrLedgerUnavailable, s.RedeemErr)
	}
	if s.credits[userID] < 1 {
		return storage.ErrInsufficientCredit
	}
	s.credits[userID]--
	return nil
}

func (s *Store) Grant(_ context.Context, userID string, amount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credits[userID] += amount
	return nil
}

func (s *Store) ensureGoshuin(userID string) map[string]models.GoshuinEntry {
	if s.goshuin[userID] == nil {
		s.goshuin[userID] = make(map[string]models.GoshuinEntry)
	}
	return s.goshuin[userID]
}

func (s *Store) PerformReading(_ context.Context, reading models.Reading, now time.Time) (storage.ReadingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[reading.UserID]
	if !ok {
		return storage.ReadingRecord{}, storage.ErrNotFound
	}

	if reading.ID == "" {
		reading.ID = uuid.NewString()
	}
	reading.CreatedAt = now
	s.readings[reading.ID] = reading

	newStreak, today := storage.NextStreak(user.LastActiveDate, user.StreakDays, now)
	user.ReadingsCount++
	user.StreakDays = newStreak
	user.LastActiveDate = &today
	s.users[user.ID] = user

	awarded := false
	if _, exists := s.ensureGoshuin(user.ID)[today]; !exists {
		s.goshuin[user.ID][today] = models.GoshuinEntry{
			ID:        uuid.NewString(),
			UserID:    user.ID,
			AwardedAt: now,
			DesignID:  models.DefaultGoshuinDesign,
		}
		awarded = true
	}
	return storage.ReadingRecord{Reading: reading, GoshuinAwarded: awarded}, nil
}

func (s *Store) ListReadings(_ context.Context, userID string) ([]models.Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Reading
	for _, r := range s.readings {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) DeleteReading(_ context.Context, userID, readingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.readings[readingID]
	if !ok || r.UserID != userID {
		return storage.ErrNotFound
	}
	delete(s.readings, readingID)
	return nil
}

func (s *Store) GoshuinHistory(_ context.Context, userID string) ([]models.GoshuinEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.GoshuinEntry
	for _, e := range s.goshuin[userID] {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AwardedAt.After(out[j].AwardedAt) })
	return out, nil
}

func (s *Store) RecentEma(_ context.Context, limit int) ([]models.EmaWish, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.EmaWish
	for _, w := range s.ema {
		if w.IsPublic {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) PostEma(_ context.Context, wish models.EmaWish) (models.EmaWish, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if wish.ID == "" {
		wish.ID = uuid.NewString()
	}
	if wish.CreatedAt.IsZero() {
		wish.CreatedAt = time.Now()
	}
	s.ema = append(s.ema, wish)
	return wish, nil
}

func (s *Store) LikeEma(_ context.Context, wishID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, w := range s.ema {
		if w.ID == wishID {
			s.ema[i].LikesCount++
			return nil
		}
	}
	return storage.ErrNotFound
}

func (s *Store) RecordZazen(_ context.Context, session models.ZazenSession) (models.ZazenSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.CompletedAt.IsZero() {
		session.CompletedAt = time.Now()
	}
	s.zazen = append(s.zazen, session)
	return session, nil
}

func (s *Store) ZazenMinutes(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seconds := 0
	for _, z := range s.zazen {
		if z.UserID == userID {
			seconds += z.DurationSeconds
		}
	}
	return seconds / 60, nil
}

// SetCredits fixes a user's balance directly; test setup helper.
func (s *Store) SetCredits(userID string, credits int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credits[userID] = credits
}

// SetUser overwrites a user row directly; test setup helper.
func (s *Store) SetUser(user models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
}

// ReadingCountFor reports how many reading rows a user owns; test assertion helper.
func (s *Store) ReadingCountFor(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.readings {
		if r.UserID == userID {
			n++
		}
	}
	return n
}
