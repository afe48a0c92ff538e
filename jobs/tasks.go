package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeRecost recomputes a single product's cost breakdown.
	TaskTypeRecost = "bom:recost"
	// TaskTypeRecostAll recomputes every calculated product, nightly.
	TaskTypeRecostAll = "bom:recost_all"
)

// RecostPayload identifies the product to recompute.
type RecostPayload struct {
	ProductID int64 `json:"product_id"`
}

// NewRecostTask constructs an Asynq task for a single-product recost.
func NewRecostTask(productID int64) (*asynq.Task, error) {
	data, err := json.Marshal(RecostPayload{ProductID: productID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeRecost, data, asynq.Queue(QueueDefault)), nil
}

// RecostAllPayload carries scheduling metadata for the nightly sweep.
type RecostAllPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewRecostAllTask constructs an Asynq task for the full-catalog recost.
func NewRecostAllTask(at time.Time) (*asynq.Task, error) {
	data, err := json.Marshal(RecostAllPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeRecostAll, data, asynq.Queue(QueueDefault)), nil
}
