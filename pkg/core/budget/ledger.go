// Package budget is the single source of truth for spend. The Ledger
// serializes all mutations so concurrent pilots can debit safely; the cost
// model prices work before it is scheduled.
package budget

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrInvalidAmount rejects negative spend. Debits are monotonic; refunds do
// not exist in this model.
var ErrInvalidAmount = errors.New("spend amount must be >= 0")

// OverheadTag labels non-pilot spend in the ledger.
const OverheadTag = "overhead"

// SpendEntry records one debit for audit.
type SpendEntry struct {
	Tag    string    `json:"tag"` // pilot_id or "overhead"
	Amount float64   `json:"amount"`
	Reason string    `json:"reason,omitempty"`
	At     time.Time `json:"at"`
}

// Ledger tracks total, per-pilot and overhead spend. Overshooting the total
// is permitted and observable via Remaining() going negative; callers decide
// whether to stop scheduling.
type Ledger struct {
	mu       sync.Mutex
	total    float64
	perPilot map[string]float64
	overhead float64
	entries  []SpendEntry
}

// NewLedger creates a ledger with the given total budget.
func NewLedger(total float64) *Ledger {
	return &Ledger{
		total:    total,
		perPilot: make(map[string]float64),
	}
}

// RecordSpend debits amount against a pilot.
func (l *Ledger) RecordSpend(pilotID string, amount float64) error {
	if amount < 0 {
		return fmt.Errorf("pilot %s: %w", pilotID, ErrInvalidAmount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.perPilot[pilotID] += amount
	l.entries = append(l.entries, SpendEntry{Tag: pilotID, Amount: amount, At: time.Now()})
	return nil
}

// RecordOverhead debits non-pilot spend (planning tokens, critique tokens).
func (l *Ledger) RecordOverhead(amount float64, reason string) error {
	if amount < 0 {
		return fmt.Errorf("overhead: %w", ErrInvalidAmount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.overhead += amount
	l.entries = append(l.entries, SpendEntry{Tag: OverheadTag, Amount: amount, Reason: reason, At: time.Now()})
	return nil
}

// Total returns the budget envelope.
func (l *Ledger) Total() float64 {
	return l.total
}

// TotalSpent returns the sum of all pilot spend plus overhead.
func (l *Ledger) TotalSpent() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totalSpentLocked()
}

func (l *Ledger) totalSpentLocked() float64 {
	sum := l.overhead
	for _, v := range l.perPilot {
		sum += v
	}
	return sum
}

// PilotSpent returns the running total for one pilot.
func (l *Ledger) PilotSpent(pilotID string) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.perPilot[pilotID]
}

// Overhead returns the non-pilot spend.
func (l *Ledger) Overhead() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.overhead
}

// Remaining returns total minus spent. Negative values are an observable
// overrun, not an error.
func (l *Ledger) Remaining() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total - l.totalSpentLocked()
}

// CanAfford reports whether amount fits in the remaining budget (non-strict).
func (l *Ledger) CanAfford(amount float64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return amount <= l.total-l.totalSpentLocked()
}

// Entries returns a copy of the debit log.
func (l *Ledger) Entries() []SpendEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]SpendEntry, len(l.entries))
	copy(out, l.entries)
	return out
}
