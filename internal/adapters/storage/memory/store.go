package memory

import (
	"sync"

	"pediatric-dosage/internal/domain/documents"
	"pediatric-dosage/internal/domain/patients"
	"pediatric-dosage/internal/domain/recommendations"
)

// Store es el backend in-memory compartido por los repos. Comparten estado
// para que el borrado de un paciente cascadee a documentos y recomendaciones,
// igual que la transacción del adapter Postgres.
type Store struct {
	mu              sync.RWMutex
	patients        map[string]patients.Patient
	documents       map[string]documents.Document
	recommendations map[string]recommendations.Recommendation
}

func NewStore() *Store {
	return &Store{
		patients:        make(map[string]patients.Patient),
		documents:       make(map[string]documents.Document),
		recommendations: make(map[string]recommendations.Recommendation),
	}
}

func (s *Store) Patients() patients.Repository {
	return &patientsRepo{store: s}
}

func (s *Store) Documents() documents.Repository {
	return &documentsRepo{store: s}
}

func (s *Store) Recommendations() recommendations.Repository {
	return &recommendationsRepo{store: s}
}
