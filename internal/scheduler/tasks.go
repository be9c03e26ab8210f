package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskReconcileSweep = "eligibility.reconcile.sweep"

const TaskReconcileDonor = "eligibility.reconcile.donor"

type ReconcileSweepPayload struct {
	Limit int `json:"limit"`
}

type ReconcileDonorPayload struct {
	DonorID int64 `json:"donorId"`
}

func NewReconcileSweepTask(payload ReconcileSweepPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReconcileSweep, data), nil
}

func ParseReconcileSweepPayload(task *asynq.Task) (ReconcileSweepPayload, error) {
	var payload ReconcileSweepPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ReconcileSweepPayload{}, err
	}
	return payload, nil
}

func NewReconcileDonorTask(payload ReconcileDonorPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReconcileDonor, data), nil
}

func ParseReconcileDonorPayload(task *asynq.Task) (ReconcileDonorPayload, error) {
	var payload ReconcileDonorPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ReconcileDonorPayload{}, err
	}
	return payload, nil
}
