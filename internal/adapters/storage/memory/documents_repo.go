package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"pediatric-dosage/internal/domain/documents"
)

type documentsRepo struct {
	store *Store
}

func (r *documentsRepo) Create(ctx context.Context, d documents.Document) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if strings.TrimSpace(d.ID) == "" {
		return errors.New("document id required")
	}
	if _, exists := r.store.documents[d.ID]; exists {
		return errors.New("document already exists")
	}
	r.store.documents[d.ID] = d
	return nil
}

func (r *documentsRepo) GetByID(ctx context.Context, id string) (documents.Document, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	d, ok := r.store.documents[id]
	if !ok {
		return documents.Document{}, documents.ErrNotFound
	}
	return d, nil
}

func (r *documentsRepo) ListByPatient(ctx context.Context, patientID string) ([]documents.Document, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]documents.Document, 0)
	for _, d := range r.store.documents {
		if d.PatientID != patientID {
			continue
		}
		// Solo metadatos en listados
		d.Content = nil
		out = append(out, d)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}

func (r *documentsRepo) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.documents[id]; !exists {
		return documents.ErrNotFound
	}
	delete(r.store.documents, id)
	return nil
}
