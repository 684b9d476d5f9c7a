package repository

import (
	"context"
	"time"
)

// RegisterRequest describes a future trigger.
type RegisterRequest struct {
	Destination  string
	ScheduledFor time.Time
	Body         interface{}
	// ScheduleID makes registration idempotent: registering the same id again replaces it.
	ScheduleID string
}

type DispatchResult struct {
	ScheduleID string `json:"scheduleId,omitempty"`
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
}

// IScheduleDispatcher registers and cancels triggers with the external scheduler.
// Implementations never return errors; failures are reported in DispatchResult.
type IScheduleDispatcher interface {
	Register(ctx context.Context, req RegisterRequest) DispatchResult
	Cancel(ctx context.Context, scheduleID string) DispatchResult
}
