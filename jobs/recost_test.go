package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/fabriq-erp/fabriq/internal/bom"
	"github.com/fabriq-erp/fabriq/internal/shared"
)

// stubCostRepo serves one calculated product without components.
type stubCostRepo struct {
	productID int64
	getErr    error
	saved     bool
}

func (r *stubCostRepo) GetProduct(ctx context.Context, id int64) (*bom.Product, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	if id != r.productID {
		return nil, shared.ErrNotFound
	}
	return &bom.Product{ID: id, Code: "ASM-1", Name: "frame", Kind: bom.KindCalculated}, nil
}

func (r *stubCostRepo) ListDependencies(ctx context.Context, parentID int64) ([]bom.DependencyEdge, error) {
	return nil, nil
}

func (r *stubCostRepo) ListProcessAttachments(ctx context.Context, productID int64) ([]bom.ProcessAttachment, error) {
	return nil, nil
}

func (r *stubCostRepo) ListLaborAttachments(ctx context.Context, productID int64) ([]bom.LaborAttachment, error) {
	return nil, nil
}

func (r *stubCostRepo) SaveCosts(ctx context.Context, productID int64, b bom.Breakdown) error {
	r.saved = true
	return nil
}

func (r *stubCostRepo) ListCalculatedProductIDs(ctx context.Context) ([]int64, error) {
	return nil, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHandleRecostSuccess(t *testing.T) {
	repo := &stubCostRepo{productID: 7}
	handlers := NewRecostHandlers(bom.NewService(repo, nil, testLogger()), testLogger())

	task, err := NewRecostTask(7)
	require.NoError(t, err)

	require.NoError(t, handlers.HandleRecost(context.Background(), task))
	require.True(t, repo.saved)
}

func TestHandleRecostMissingProductSkipsRetry(t *testing.T) {
	repo := &stubCostRepo{productID: 7}
	handlers := NewRecostHandlers(bom.NewService(repo, nil, testLogger()), testLogger())

	task, err := NewRecostTask(99)
	require.NoError(t, err)

	err = handlers.HandleRecost(context.Background(), task)
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleRecostStorageErrorIsRetried(t *testing.T) {
	repo := &stubCostRepo{productID: 7, getErr: errors.New("connection refused")}
	handlers := NewRecostHandlers(bom.NewService(repo, nil, testLogger()), testLogger())

	task, err := NewRecostTask(7)
	require.NoError(t, err)

	err = handlers.HandleRecost(context.Background(), task)
	require.Error(t, err)
	require.NotErrorIs(t, err, asynq.SkipRetry)
	require.ErrorIs(t, err, repo.getErr)
}

func TestHandleRecostMalformedPayloadSkipsRetry(t *testing.T) {
	repo := &stubCostRepo{productID: 7}
	handlers := NewRecostHandlers(bom.NewService(repo, nil, testLogger()), testLogger())

	task := asynq.NewTask(TaskTypeRecost, []byte("{"))
	err := handlers.HandleRecost(context.Background(), task)
	require.ErrorIs(t, err, asynq.SkipRetry)
}
