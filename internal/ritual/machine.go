// Package ritual models the ceremonial session flow that gates a reading:
// purification, worship, offering, then the worry input. Transitions are
// strictly linear; the only way back is an explicit reset from the result.
package ritual

import (
	"errors"
	"time"
)

// ErrInvalidTransition rejects an event the current state does not accept.
var ErrInvalidTransition = errors.New("ritual: invalid transition")

// State is one stage of the ceremony.
type State int

const (
	StateStart State = iota
	StatePurify
	StateWorship
	StateOffer
	StateInput
	StateGenerating
	StateResult
	StateGoshuinReveal
)

var stateNames = map[State]string{
	StateStart:         "start",
	StatePurify:        "purify",
	StateWorship:       "worship",
	StateOffer:         "offer",
	StateInput:         "input",
	StateGenerating:    "generating",
	StateResult:        "result",
	StateGoshuinReveal: "goshuin-reveal",
}

func (s State) String() string { return stateNames[s] }

// WorshipPhase is one step of the fixed bowing sub-sequence.
type WorshipPhase int

const (
	PhaseWash WorshipPhase = iota
	PhaseBow1
	PhaseBow2
	PhaseClap1
	PhaseClap2
	PhaseBow3
	PhaseComplete
)

// worshipTimings drives the auto-advancing ceremony: wash, two bows, two
// claps, a final bow, then a beat before the offering.
var worshipTimings = []struct {
	phase WorshipPhase
	hold  time.Duration
}{
	{PhaseWash, 4 * time.Second},
	{PhaseBow1, 2 * time.Second},
	{PhaseBow2, 2 * time.Second},
	{PhaseClap1, 800 * time.Millisecond},
	{PhaseClap2, 800 * time.Millisecond},
	{PhaseBow3, 2 * time.Second},
	{PhaseComplete, time.Second},
}

const (
	purifyScrubGain  = 5
	purifyDecay      = 2
	purifyComplete   = 100
	offerThrowLength = 1200 * time.Millisecond
	offerAcceptHold  = 2 * time.Second
)

// Machine is one visitor's ritual session. Not safe for concurrent use; a
// session belongs to a single event loop.
type Machine struct {
	now func() time.Time

	state          State
	purifyProgress int

	worshipIdx    int
	phaseDeadline time.Time

	throwDeadline  time.Time
	offered        bool
	acceptDeadline time.Time

	paymentConfirmed bool
	worry            string
}

// New returns a machine at the start state. The clock is injectable for tests;
// nil means time.Now.
func New(now func() time.Time) *Machine {
	if now == nil {
		now = time.Now
	}
	return &Machine{now: now, state: StateStart}
}

// NewWithRecoveredPayment returns a machine for a visitor arriving back from a
// completed checkout redirect with their pending worry recovered. The whole
// ceremony up to and including the offering is bypassed.
func NewWithRecoveredPayment(now func() time.Time, pendingWorry string) *Machine {
	m := New(now)
	m.state = StateInput
	m.paymentConfirmed = true
	m.worry = pendingWorry
	return m
}

// State reports the current stage.
func (m *Machine) State() State { return m.state }

// PurifyProgress reports the 0..100 purification meter.
func (m *Machine) PurifyProgress() int { return m.purifyProgress }

// PaymentConfirmed reports whether the offering was settled externally.
func (m *Machine) PaymentConfirmed() bool { return m.paymentConfirmed }

// Worry returns the collected input text, if any.
func (m *Machine) Worry() string { return m.worry }

// WorshipPhase reports the current bowing step; only meaningful during worship.
func (m *Machine) WorshipPhase() WorshipPhase { return worshipTimings[m.worshipIdx].phase }

// Begin starts the ceremony.
func (m *Machine) Begin() error {
	if m.state != StateStart {
		return ErrInvalidTransition
	}
	m.state = StatePurify
	m.purifyProgress = 0
	return nil
}

// Scrub accumulates purification progress from one interaction. Progress
// saturates at 100, which completes the stage.
func (m *Machine) Scrub() error {
	if m.state != StatePurify {
		return ErrInvalidTransition
	}
	m.purifyProgress += purifyScrubGain
	if m.purifyProgress >= purifyComplete {
		m.purifyProgress = purifyComplete
		m.enterWorship()
	}
	return nil
}

func (m *Machine) enterWorship() {
	m.state = StateWorship
	m.worshipIdx = 0
	m.phaseDeadline = m.now().Add(worshipTimings[0].hold)
}

// Tick advances every time-driven part of the ceremony: purification decay,
// the worship phase sequence, and the offering acceptance beat. Interaction
// events are separate; no amount of ticking passes the offering without a tap.
func (m *Machine) Tick() {
	switch m.state {
	case StatePurify:
		// Passive decay while the visitor hesitates.
		m.purifyProgress -= purifyDecay
		if m.purifyProgress < 0 {
			m.purifyProgress = 0
		}
	case StateWorship:
		for m.now().After(m.phaseDeadline) || m.now().Equal(m.phaseDeadline) {
			if m.worshipIdx == len(worshipTimings)-1 {
				m.state = StateOffer
				return
			}
			m.worshipIdx++
			m.phaseDeadline = m.phaseDeadline.Add(worshipTimings[m.worshipIdx].hold)
		}
	case StateOffer:
		now := m.now()
		if !m.offered && !m.throwDeadline.IsZero() && !now.Before(m.throwDeadline) {
			m.offered = true
			m.acceptDeadline = now.Add(offerAcceptHold)
		}
		if m.offered && !now.Before(m.acceptDeadline) {
			m.state = StateInput
		}
	}
}

// Offer registers the offering tap. Taps while the coin-throw animation is
// still playing, or after the offering was accepted, are ignored.
func (m *Machine) Offer() error {
	if m.state != StateOffer {
		return ErrInvalidTransition
	}
	if m.offered || !m.throwDeadline.IsZero() {
		return nil
	}
	m.throwDeadline = m.now().Add(offerThrowLength)
	return nil
}

// Submit collects the worry and moves to the consulting stage. There is no
// cancellation path once submitted.
func (m *Machine) Submit(worry string) error {
	if m.state != StateInput || worry == "" {
		return ErrInvalidTransition
	}
	m.worry = worry
	m.state = StateGenerating
	return nil
}

// Resolve records a delivered fortune. withGoshuin routes through the
// stamp-reveal stage first.
func (m *Machine) Resolve(withGoshuin bool) error {
	if m.state != StateGenerating {
		return ErrInvalidTransition
	}
	if withGoshuin {
		m.state = StateGoshuinReveal
	} else {
		m.state = StateResult
	}
	return nil
}

// Fail returns to the input stage after a generation failure; the worry is kept
// so the visitor can resubmit.
func (m *Machine) Fail() error {
	if m.state != StateGenerating {
		return ErrInvalidTransition
	}
	m.state = StateInput
	return nil
}

// AcknowledgeGoshuin moves from the stamp reveal to the result.
func (m *Machine) AcknowledgeGoshuin() error {
	if m.state != StateGoshuinReveal {
		return ErrInvalidTransition
	}
	m.state = StateResult
	return nil
}

// Reset ends the session from the result, clearing every intermediate flag.
// It is the only backward transition in the machine.
func (m *Machine) Reset() error {
	if m.state != StateResult {
		return ErrInvalidTransition
	}
	*m = Machine{now: m.now, state: StateStart}
	return nil
}
