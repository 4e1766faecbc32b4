package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"pediatric-dosage/internal/domain/patients"
)

type patientsRepo struct {
	store *Store
}

func (r *patientsRepo) Create(ctx context.Context, p patients.Patient) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("patient id required")
	}
	if _, exists := r.store.patients[p.ID]; exists {
		return errors.New("patient already exists")
	}
	r.store.patients[p.ID] = p
	return nil
}

func (r *patientsRepo) Update(ctx context.Context, p patients.Patient) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("patient id required")
	}
	if _, exists := r.store.patients[p.ID]; !exists {
		return patients.ErrNotFound
	}
	r.store.patients[p.ID] = p
	return nil
}

func (r *patientsRepo) GetByID(ctx context.Context, id string) (patients.Patient, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	p, ok := r.store.patients[id]
	if !ok {
		return patients.Patient{}, patients.ErrNotFound
	}
	return p, nil
}

func (r *patientsRepo) ListByClinician(ctx context.Context, clinicianUserID string) ([]patients.Patient, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]patients.Patient, 0)
	for _, p := range r.store.patients {
		if p.ClinicianUserID == clinicianUserID {
			out = append(out, p)
		}
	}

	// Orden estable por created_at asc (solo para consistencia en dev)
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

// Delete borra la ficha y cascadea documentos y recomendaciones,
// como hace la transacción del adapter Postgres.
func (r *patientsRepo) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.patients[id]; !exists {
		return patients.ErrNotFound
	}
	delete(r.store.patients, id)

	for docID, d := range r.store.documents {
		if d.PatientID == id {
			delete(r.store.documents, docID)
		}
	}
	for recID, rec := range r.store.recommendations {
		if rec.PatientID == id {
			delete(r.store.recommendations, recID)
		}
	}

	return nil
}
