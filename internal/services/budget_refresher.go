package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"vida/internal/logger"
)

// DefaultRefreshInterval is how often a tracked user's active budgets are
// re-aggregated when no interval is configured. Spending recorded through the
// transaction endpoints becomes visible in budget progress within this window.
const DefaultRefreshInterval = 30 * time.Second

// BudgetRefresher keeps the spent_amount of active budgets synchronized with
// the transaction ledger without every transaction-mutating path knowing
// about budgets. Each tracked user session gets its own refresh loop: an
// immediate pass on load, then one per interval. The loop only recomputes the
// budgets from its last loaded list and re-fetches that list after each pass.
type BudgetRefresher struct {
	budgets  BudgetServicer
	interval time.Duration
	log      *zap.SugaredLogger

	mu       sync.Mutex
	sessions map[uint]context.CancelFunc
}

// NewBudgetRefresher creates a BudgetRefresher. A non-positive interval falls
// back to DefaultRefreshInterval.
func NewBudgetRefresher(budgets BudgetServicer, interval time.Duration) *BudgetRefresher {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &BudgetRefresher{
		budgets:  budgets,
		interval: interval,
		log:      logger.Get(),
		sessions: make(map[uint]context.CancelFunc),
	}
}

// Track starts the periodic refresh loop for a user session. Tracking an
// already-tracked user is a no-op. The loop stops when ctx is cancelled or
// the user is untracked.
func (r *BudgetRefresher) Track(ctx context.Context, userID uint) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[userID]; ok {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	r.sessions[userID] = cancel
	go r.run(ctx, userID)
}

// Untrack stops the refresh loop for a user session, if one is running.
func (r *BudgetRefresher) Untrack(userID uint) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cancel, ok := r.sessions[userID]; ok {
		cancel()
		delete(r.sessions, userID)
	}
}

// Stop cancels every tracked session. Must be called on shutdown so no
// ticker outlives its owning scope.
func (r *BudgetRefresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for userID, cancel := range r.sessions {
		cancel()
		delete(r.sessions, userID)
	}
}

func (r *BudgetRefresher) run(ctx context.Context, userID uint) {
	loaded := r.load(userID)
	loaded = r.refreshPass(userID, loaded)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if len(loaded) == 0 {
				// Nothing active in the loaded set; re-check next cycle.
				loaded = r.load(userID)
				continue
			}
			loaded = r.refreshPass(userID, loaded)
		}
	}
}

// load fetches the budgets currently in effect for the user. On error it
// returns the empty set; the next cycle retries.
func (r *BudgetRefresher) load(userID uint) []budgetRef {
	budgets, err := r.budgets.GetActiveBudgetsForDate(userID, time.Now())
	if err != nil {
		r.log.Warnw("budget refresh load failed", "user_id", userID, "error", err)
		return nil
	}
	refs := make([]budgetRef, len(budgets))
	for i, b := range budgets {
		refs[i] = budgetRef{ID: b.ID}
	}
	return refs
}

// refreshPass recomputes spent_amount for each loaded budget and re-fetches
// the in-effect list so the next cycle works from fresh state. A failed
// recompute for one budget is logged and does not abort the pass.
func (r *BudgetRefresher) refreshPass(userID uint, loaded []budgetRef) []budgetRef {
	for _, ref := range loaded {
		if err := r.budgets.RecomputeSpent(ref.ID); err != nil {
			r.log.Warnw("budget recompute failed",
				"budget_id", ref.ID,
				"user_id", userID,
				"error", err,
			)
		}
	}
	return r.load(userID)
}

// budgetRef is the slice element the refresher keeps per loaded budget. Only
// the ID is needed to drive recomputes.
type budgetRef struct {
	ID uint
}
