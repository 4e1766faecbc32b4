package recommendations

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, rec Recommendation) error
	GetByID(ctx context.Context, id string) (Recommendation, error)
	ListByPatient(ctx context.Context, patientID string, filter ListFilter) ([]Recommendation, error)

	// SetStatus cambia el estado y refresca updated_at.
	SetStatus(ctx context.Context, id string, status Status, at time.Time) error
}

type ListFilter struct {
	Statuses   []Status
	Sources    []Source
	Medication string
	From       *time.Time
	To         *time.Time
	Limit      int
}
