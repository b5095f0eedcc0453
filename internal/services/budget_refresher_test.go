package services

import (
	"context"
	"sync"
	"testing"
	"time"

	apperrors "vida/internal/errors"
	"vida/internal/models"
	"vida/internal/pagination"
)

// stubBudgetService records RecomputeSpent calls and serves a fixed set of
// active budgets. Only the methods the refresher uses do real work.
type stubBudgetService struct {
	mu        sync.Mutex
	active    []models.Budget
	recomputs map[uint]int
	failIDs   map[uint]bool
	passDone  chan struct{}
}

func newStubBudgetService(active ...models.Budget) *stubBudgetService {
	return &stubBudgetService{
		active:    active,
		recomputs: make(map[uint]int),
		failIDs:   make(map[uint]bool),
		passDone:  make(chan struct{}, 64),
	}
}

func (s *stubBudgetService) GetActiveBudgetsForDate(_ uint, _ time.Time) ([]models.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Budget, len(s.active))
	copy(out, s.active)
	select {
	case s.passDone <- struct{}{}:
	default:
	}
	return out, nil
}

func (s *stubBudgetService) RecomputeSpent(budgetID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recomputs[budgetID]++
	if s.failIDs[budgetID] {
		return apperrors.ErrInternalServer
	}
	return nil
}

func (s *stubBudgetService) recomputeCount(budgetID uint) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recomputs[budgetID]
}

func (s *stubBudgetService) CreateBudget(uint, string, int64, models.BudgetPeriod, time.Time, *time.Time, *string, *uint) (*models.Budget, error) {
	return nil, nil
}
func (s *stubBudgetService) GetUserBudgets(uint, pagination.PageRequest, bool, *models.BudgetPeriod) (*pagination.PageResponse[models.Budget], error) {
	return nil, nil
}
func (s *stubBudgetService) GetBudgetByID(uint, uint) (*models.Budget, error) { return nil, nil }
func (s *stubBudgetService) UpdateBudget(uint, uint, BudgetUpdate) error      { return nil }
func (s *stubBudgetService) DeleteBudget(uint, uint) error                    { return nil }
func (s *stubBudgetService) RefreshActiveBudgets(uint) ([]models.Budget, error) {
	return nil, nil
}

var _ BudgetServicer = (*stubBudgetService)(nil)

func activeBudget(id uint) models.Budget {
	return models.Budget{Base: models.Base{ID: id}, IsActive: true}
}

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestBudgetRefresherInitialPass(t *testing.T) {
	stub := newStubBudgetService(activeBudget(1), activeBudget(2))
	r := NewBudgetRefresher(stub, time.Hour) // interval long enough to isolate the initial pass
	defer r.Stop()

	r.Track(context.Background(), 1)

	waitFor(t, func() bool {
		return stub.recomputeCount(1) >= 1 && stub.recomputeCount(2) >= 1
	}, "expected an immediate recompute pass for all loaded budgets")
}

func TestBudgetRefresherPeriodicPass(t *testing.T) {
	stub := newStubBudgetService(activeBudget(7))
	r := NewBudgetRefresher(stub, 10*time.Millisecond)
	defer r.Stop()

	r.Track(context.Background(), 1)

	waitFor(t, func() bool {
		return stub.recomputeCount(7) >= 3
	}, "expected repeated recompute passes on the interval")
}

func TestBudgetRefresherErrorDoesNotAbortPass(t *testing.T) {
	stub := newStubBudgetService(activeBudget(1), activeBudget(2), activeBudget(3))
	stub.failIDs[2] = true
	r := NewBudgetRefresher(stub, time.Hour)
	defer r.Stop()

	r.Track(context.Background(), 1)

	waitFor(t, func() bool {
		return stub.recomputeCount(1) >= 1 && stub.recomputeCount(3) >= 1
	}, "expected the pass to continue past a failing budget")
}

func TestBudgetRefresherCancellation(t *testing.T) {
	stub := newStubBudgetService(activeBudget(5))
	r := NewBudgetRefresher(stub, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	r.Track(ctx, 1)

	waitFor(t, func() bool { return stub.recomputeCount(5) >= 1 }, "expected initial pass")

	cancel()
	// Give the loop time to observe cancellation, then verify it stopped.
	time.Sleep(30 * time.Millisecond)
	count := stub.recomputeCount(5)
	time.Sleep(50 * time.Millisecond)
	if got := stub.recomputeCount(5); got != count {
		t.Errorf("expected no recomputes after cancellation, count went %d -> %d", count, got)
	}
}

func TestBudgetRefresherUntrack(t *testing.T) {
	stub := newStubBudgetService(activeBudget(9))
	r := NewBudgetRefresher(stub, 10*time.Millisecond)
	defer r.Stop()

	r.Track(context.Background(), 42)
	waitFor(t, func() bool { return stub.recomputeCount(9) >= 1 }, "expected initial pass")

	r.Untrack(42)
	time.Sleep(30 * time.Millisecond)
	count := stub.recomputeCount(9)
	time.Sleep(50 * time.Millisecond)
	if got := stub.recomputeCount(9); got != count {
		t.Errorf("expected no recomputes after untrack, count went %d -> %d", count, got)
	}
}

func TestBudgetRefresherTrackIsIdempotent(t *testing.T) {
	stub := newStubBudgetService()
	r := NewBudgetRefresher(stub, time.Hour)
	defer r.Stop()

	r.Track(context.Background(), 1)
	r.Track(context.Background(), 1)

	// One session means exactly one load for the initial pass (plus its
	// trailing re-fetch), not two.
	waitFor(t, func() bool { return len(stub.passDone) >= 1 }, "expected initial load")
	time.Sleep(50 * time.Millisecond)
	if got := len(stub.passDone); got > 2 {
		t.Errorf("expected at most 2 loads for a single session, got %d", got)
	}
}
