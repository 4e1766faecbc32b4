package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"pediatric-dosage/internal/domain/recommendations"
)

type recommendationsRepo struct {
	store *Store
}

func (r *recommendationsRepo) Create(ctx context.Context, rec recommendations.Recommendation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if strings.TrimSpace(rec.ID) == "" {
		return errors.New("recommendation id required")
	}
	if _, exists := r.store.recommendations[rec.ID]; exists {
		return errors.New("recommendation already exists")
	}
	r.store.recommendations[rec.ID] = rec
	return nil
}

func (r *recommendationsRepo) GetByID(ctx context.Context, id string) (recommendations.Recommendation, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rec, ok := r.store.recommendations[id]
	if !ok {
		return recommendations.Recommendation{}, recommendations.ErrNotFound
	}
	return rec, nil
}

func (r *recommendationsRepo) ListByPatient(ctx context.Context, patientID string, filter recommendations.ListFilter) ([]recommendations.Recommendation, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	out := make([]recommendations.Recommendation, 0)
	for _, rec := range r.store.recommendations {
		if rec.PatientID != patientID {
			continue
		}
		if len(filter.Statuses) > 0 && !statusIn(filter.Statuses, rec.Status) {
			continue
		}
		if len(filter.Sources) > 0 && !sourceIn(filter.Sources, rec.Source) {
			continue
		}
		if filter.Medication != "" && !strings.EqualFold(rec.Medication, filter.Medication) {
			continue
		}
		if filter.From != nil && rec.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && rec.CreatedAt.After(*filter.To) {
			continue
		}
		out = append(out, rec)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func (r *recommendationsRepo) SetStatus(ctx context.Context, id string, status recommendations.Status, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rec, ok := r.store.recommendations[id]
	if !ok {
		return recommendations.ErrNotFound
	}
	rec.Status = status
	rec.UpdatedAt = at
	r.store.recommendations[id] = rec
	return nil
}

func statusIn(ss []recommendations.Status, s recommendations.Status) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

func sourceIn(ss []recommendations.Source, s recommendations.Source) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
