package domain

import "context"

// ReconcileEventResult reports the outcome of reconciling one event.
type ReconcileEventResult struct {
	EventID        string `json:"eventId"`
	Success        bool   `json:"success"`
	TicketsUpdated int64  `json:"ticketsUpdated,omitempty"`
	Error          string `json:"error,omitempty"`
}

// ReconcileRunResult aggregates one reconciler run.
type ReconcileRunResult struct {
	TotalTicketsUpdated int64                  `json:"totalTicketsUpdated"`
	Results             []ReconcileEventResult `json:"results"`
}

// AttendanceReconciler marks every unattended ticket of each ended event as
// attended. Runs are idempotent and safe to overlap; one event's failure never
// blocks the others.
type AttendanceReconciler interface {
	Run(ctx context.Context) (*ReconcileRunResult, error)
}
