package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"forecastgen/internal/types"
)

// defaultAwaitTimeout bounds how long a waiter blocks on an operation when
// its own context carries no deadline.
const defaultAwaitTimeout = 5 * time.Minute

// Hub matches in-flight platform operations with their completion events.
// The forecast pipeline awaits an operation ID; the platform's notification
// webhook completes it. Completions arriving before any waiter registers
// are retained, so the race between webhook and waiter is harmless. Stray
// notifications with no waiter (duplicate webhook deliveries, operations
// nobody awaits) are pruned once they outlive the await window.
type Hub struct {
	mu      sync.Mutex
	pending map[string]*pendingOp
	timeout time.Duration
	logger  *slog.Logger
}

type pendingOp struct {
	shot    *OneShot[string]
	created time.Time
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		pending: make(map[string]*pendingOp),
		timeout: defaultAwaitTimeout,
		logger:  logger,
	}
}

func (h *Hub) oneShot(operationID string) *OneShot[string] {
	now := time.Now()
	h.mu.Lock()
	defer h.mu.Unlock()

	// No waiter can legitimately arrive after the await window, so
	// anything older than the timeout is unclaimed and safe to drop.
	for id, op := range h.pending {
		if now.Sub(op.created) > h.timeout {
			delete(h.pending, id)
		}
	}

	op, ok := h.pending[operationID]
	if !ok {
		op = &pendingOp{shot: NewOneShot[string](), created: now}
		h.pending[operationID] = op
	}
	return op.shot
}

// AwaitOperation blocks until the operation completes, returning the
// resulting forecast ID. The entry is removed once the wait finishes so the
// pending map does not grow with completed operations.
func (h *Hub) AwaitOperation(ctx context.Context, operationID string) (string, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	shot := h.oneShot(operationID)
	defer func() {
		h.mu.Lock()
		delete(h.pending, operationID)
		h.mu.Unlock()
	}()

	forecastID, err := shot.Wait(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return "", types.NewAppError(types.ErrCodeInboundGenerationFailed,
				"timed out waiting for inbound forecast operation", err).
				WithDetail("operationId", operationID)
		}
		return "", err
	}
	return forecastID, nil
}

// Complete resolves the operation with its forecast ID.
func (h *Hub) Complete(operationID, forecastID string) {
	h.logger.Info("operation complete", "operation_id", operationID, "forecast_id", forecastID)
	h.oneShot(operationID).Resolve(forecastID)
}

// Fail rejects the operation.
func (h *Hub) Fail(operationID, message string) {
	h.logger.Warn("operation failed", "operation_id", operationID, "message", message)
	h.oneShot(operationID).Reject(types.NewAppError(
		types.ErrCodeInboundGenerationFailed, message, nil).
		WithDetail("operationId", operationID))
}
