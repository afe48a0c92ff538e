package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/fabriq-erp/fabriq/internal/bom"
	"github.com/fabriq-erp/fabriq/internal/shared"
)

// RecostHandlers binds the cost-recomputation tasks to the resolver service.
type RecostHandlers struct {
	costs  *bom.Service
	logger *slog.Logger
}

func NewRecostHandlers(costs *bom.Service, logger *slog.Logger) *RecostHandlers {
	return &RecostHandlers{costs: costs, logger: logger}
}

// HandleRecost recomputes one product. A missing product is not retried:
// the product was deleted between enqueue and execution. Storage failures
// are returned as-is so asynq retries them.
func (h *RecostHandlers) HandleRecost(ctx context.Context, t *asynq.Task) error {
	var payload RecostPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	breakdown, err := h.costs.ProductCost(ctx, payload.ProductID, false)
	if err != nil {
		h.logger.Warn("recost task failed", "product_id", payload.ProductID, slog.Any("error", err))
		if errors.Is(err, shared.ErrNotFound) {
			return asynq.SkipRetry
		}
		return fmt.Errorf("recost product %d: %w", payload.ProductID, err)
	}
	if err := h.costs.Invalidate(ctx, payload.ProductID); err != nil {
		h.logger.Warn("recost cache invalidation failed", "product_id", payload.ProductID, slog.Any("error", err))
	}
	h.logger.Info("product recosted",
		"product_id", payload.ProductID,
		"total", breakdown.Total,
		"cycles_detected", breakdown.CyclesDetected)
	return nil
}

// HandleRecostAll sweeps every calculated product.
func (h *RecostHandlers) HandleRecostAll(ctx context.Context, t *asynq.Task) error {
	var payload RecostAllPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	recosted, err := h.costs.RecostAll(ctx)
	if err != nil {
		return err
	}
	h.logger.Info("catalog recost sweep finished", "recosted", recosted)
	return nil
}

// Enqueuer submits recost jobs from the catalog service after product edits.
type Enqueuer struct {
	client *asynq.Client
}

func NewEnqueuer(client *asynq.Client) *Enqueuer {
	return &Enqueuer{client: client}
}

func (e *Enqueuer) EnqueueRecost(ctx context.Context, productID int64) error {
	task, err := NewRecostTask(productID)
	if err != nil {
		return err
	}
	_, err = e.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
	return err
}
