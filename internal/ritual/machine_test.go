package ritual

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances only when told to, so phase timings are exact.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 11, 20, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func scrubToComplete(t *testing.T, m *Machine) {
	t.Helper()
	for i := 0; i < 20 && m.State() == StatePurify; i++ {
		require.NoError(t, m.Scrub())
	}
	require.Equal(t, StateWorship, m.State())
}

func finishWorship(t *testing.T, m *Machine, clock *fakeClock) {
	t.Helper()
	clock.Advance(15 * time.Second) // longer than the whole ceremony
	m.Tick()
	require.Equal(t, StateOffer, m.State())
}

func acceptOffering(t *testing.T, m *Machine, clock *fakeClock) {
	t.Helper()
	require.NoError(t, m.Offer())
	clock.Advance(offerThrowLength)
	m.Tick()
	clock.Advance(offerAcceptHold)
	m.Tick()
	require.Equal(t, StateInput, m.State())
}

func TestFullCeremony(t *testing.T) {
	clock := newFakeClock()
	m := New(clock.Now)

	require.Equal(t, StateStart, m.State())
	require.NoError(t, m.Begin())
	require.Equal(t, StatePurify, m.State())

	scrubToComplete(t, m)
	finishWorship(t, m, clock)
	acceptOffering(t, m, clock)

	require.NoError(t, m.Submit("I feel stuck"))
	assert.Equal(t, StateGenerating, m.State())
	assert.Equal(t, "I feel stuck", m.Worry())

	require.NoError(t, m.Resolve(false))
	assert.Equal(t, StateResult, m.State())

	require.NoError(t, m.Reset())
	assert.Equal(t, StateStart, m.State())
	assert.Empty(t, m.Worry())
	assert.Zero(t, m.PurifyProgress())
}

func TestPurifyDecayAndSaturation(t *testing.T) {
	m := New(newFakeClock().Now)
	require.NoError(t, m.Begin())

	require.NoError(t, m.Scrub())
	require.NoError(t, m.Scrub())
	assert.Equal(t, 10, m.PurifyProgress())

	m.Tick()
	assert.Equal(t, 8, m.PurifyProgress())

	for i := 0; i < 10; i++ {
		m.Tick()
	}
	assert.Zero(t, m.PurifyProgress(), "decay floors at zero")
	assert.Equal(t, StatePurify, m.State(), "decay alone never completes purification")
}

func TestWorshipPhasesAdvanceInOrder(t *testing.T) {
	clock := newFakeClock()
	m := New(clock.Now)
	require.NoError(t, m.Begin())
	scrubToComplete(t, m)

	assert.Equal(t, PhaseWash, m.WorshipPhase())

	clock.Advance(4 * time.Second)
	m.Tick()
	assert.Equal(t, PhaseBow1, m.WorshipPhase())

	clock.Advance(2 * time.Second)
	m.Tick()
	assert.Equal(t, PhaseBow2, m.WorshipPhase())

	clock.Advance(2*time.Second + 1600*time.Millisecond)
	m.Tick()
	assert.Equal(t, PhaseBow3, m.WorshipPhase())

	clock.Advance(3 * time.Second)
	m.Tick()
	assert.Equal(t, StateOffer, m.State())
}

func TestOfferRequiresATap(t *testing.T) {
	clock := newFakeClock()
	m := New(clock.Now)
	require.NoError(t, m.Begin())
	scrubToComplete(t, m)
	finishWorship(t, m, clock)

	// No amount of waiting passes the offering without the tap.
	for i := 0; i < 100; i++ {
		clock.Advance(time.Minute)
		m.Tick()
	}
	assert.Equal(t, StateOffer, m.State())
}

func TestOfferDebouncesRepeatTaps(t *testing.T) {
	clock := newFakeClock()
	m := New(clock.Now)
	require.NoError(t, m.Begin())
	scrubToComplete(t, m)
	finishWorship(t, m, clock)

	require.NoError(t, m.Offer())
	firstDeadline := m.throwDeadline

	clock.Advance(300 * time.Millisecond)
	require.NoError(t, m.Offer(), "repeat tap is ignored, not an error")
	assert.Equal(t, firstDeadline, m.throwDeadline, "repeat tap does not restart the throw")

	clock.Advance(offerThrowLength)
	m.Tick()
	clock.Advance(offerAcceptHold)
	m.Tick()
	assert.Equal(t, StateInput, m.State())
}

func TestRecoveredPaymentBypassesCeremony(t *testing.T) {
	m := NewWithRecoveredPayment(newFakeClock().Now, "pending worry from before checkout")
	assert.Equal(t, StateInput, m.State())
	assert.True(t, m.PaymentConfirmed())
	assert.Equal(t, "pending worry from before checkout", m.Worry())

	require.NoError(t, m.Submit("pending worry from before checkout"))
	assert.Equal(t, StateGenerating, m.State())
}

func TestGoshuinRevealRoute(t *testing.T) {
	m := NewWithRecoveredPayment(newFakeClock().Now, "w")
	require.NoError(t, m.Submit("w"))
	require.NoError(t, m.Resolve(true))
	assert.Equal(t, StateGoshuinReveal, m.State())

	require.NoError(t, m.AcknowledgeGoshuin())
	assert.Equal(t, StateResult, m.State())
	require.NoError(t, m.Reset())
}

func TestFailureReturnsToInput(t *testing.T) {
	m := NewWithRecoveredPayment(newFakeClock().Now, "w")
	require.NoError(t, m.Submit("w"))
	require.NoError(t, m.Fail())
	assert.Equal(t, StateInput, m.State())
	assert.Equal(t, "w", m.Worry(), "worry survives a failed consultation")
}

func TestInvalidTransitions(t *testing.T) {
	clock := newFakeClock()
	m := New(clock.Now)

	assert.ErrorIs(t, m.Scrub(), ErrInvalidTransition)
	assert.ErrorIs(t, m.Offer(), ErrInvalidTransition)
	assert.ErrorIs(t, m.Submit("w"), ErrInvalidTransition)
	assert.ErrorIs(t, m.Resolve(false), ErrInvalidTransition)
	assert.ErrorIs(t, m.Reset(), ErrInvalidTransition)

	require.NoError(t, m.Begin())
	assert.ErrorIs(t, m.Begin(), ErrInvalidTransition)
	assert.ErrorIs(t, m.Submit("w"), ErrInvalidTransition)

	scrubToComplete(t, m)
	assert.ErrorIs(t, m.Scrub(), ErrInvalidTransition, "no backward transition to purification")
}

func TestSubmitRejectsEmptyWorry(t *testing.T) {
	m := NewWithRecoveredPayment(newFakeClock().Now, "")
	assert.ErrorIs(t, m.Submit(""), ErrInvalidTransition)
	assert.Equal(t, StateInput, m.State())
}
