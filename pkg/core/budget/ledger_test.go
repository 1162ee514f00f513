package budget

import (
	"errors"
	"math"
	"sync"
	"testing"
)

func TestLedger_Conservation(t *testing.T) {
	l := NewLedger(100)

	if err := l.RecordSpend("pilot_a", 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := l.RecordSpend("pilot_b", 7.5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := l.RecordSpend("pilot_a", 2.5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := l.RecordOverhead(3, "planning"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantSpent := 23.0
	if got := l.TotalSpent(); math.Abs(got-wantSpent) > 1e-9 {
		t.Errorf("TotalSpent = %v, want %v", got, wantSpent)
	}
	if got := l.PilotSpent("pilot_a"); math.Abs(got-12.5) > 1e-9 {
		t.Errorf("PilotSpent(pilot_a) = %v, want 12.5", got)
	}
	if got := l.Remaining(); math.Abs(got-77) > 1e-9 {
		t.Errorf("Remaining = %v, want 77", got)
	}

	// TotalSpent must also equal the sum of all recorded debits.
	var sum float64
	for _, e := range l.Entries() {
		sum += e.Amount
	}
	if math.Abs(sum-wantSpent) > 1e-9 {
		t.Errorf("entry sum = %v, want %v", sum, wantSpent)
	}
}

func TestLedger_NegativeAmountRejected(t *testing.T) {
	l := NewLedger(10)
	if err := l.RecordSpend("p", -1); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("RecordSpend(-1) err = %v, want ErrInvalidAmount", err)
	}
	if err := l.RecordOverhead(-0.01, "x"); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("RecordOverhead(-0.01) err = %v, want ErrInvalidAmount", err)
	}
	if got := l.TotalSpent(); got != 0 {
		t.Errorf("rejected debits must not change spend, got %v", got)
	}
}

func TestLedger_CanAffordBoundary(t *testing.T) {
	l := NewLedger(10)
	if !l.CanAfford(10) {
		t.Error("CanAfford is non-strict: amount == remaining must pass")
	}
	if l.CanAfford(10.01) {
		t.Error("CanAfford(10.01) must fail on a 10 budget")
	}
}

func TestLedger_OverrunObservable(t *testing.T) {
	l := NewLedger(5)
	if err := l.RecordSpend("p", 8); err != nil {
		t.Fatalf("overspend must be recorded, got error: %v", err)
	}
	if got := l.Remaining(); got != -3 {
		t.Errorf("Remaining = %v, want -3", got)
	}
}

func TestLedger_ConcurrentDebits(t *testing.T) {
	l := NewLedger(1000)
	const workers = 20
	const debits = 50

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			pilot := "pilot_a"
			if id%2 == 1 {
				pilot = "pilot_b"
			}
			for i := 0; i < debits; i++ {
				_ = l.RecordSpend(pilot, 0.5)
				_ = l.Remaining() // interleave reads
			}
		}(w)
	}
	wg.Wait()

	want := float64(workers*debits) * 0.5
	if got := l.TotalSpent(); math.Abs(got-want) > 1e-6 {
		t.Errorf("TotalSpent = %v, want %v", got, want)
	}
	perPilot := l.PilotSpent("pilot_a") + l.PilotSpent("pilot_b")
	if math.Abs(perPilot+l.Overhead()-l.TotalSpent()) > 1e-6 {
		t.Errorf("spent invariant broken: pilots=%v overhead=%v total=%v", perPilot, l.Overhead(), l.TotalSpent())
	}
}
