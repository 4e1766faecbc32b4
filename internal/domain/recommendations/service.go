package recommendations

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("recommendation not found")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	Medication       string
	DoseMg           float64
	DoseUnit         string
	Route            Route
	Frequency        string
	DurationDays     int
	RationaleSummary string
	Warnings         []string
	Source           Source
}

func (s *Service) Create(ctx context.Context, patientID, createdByUserID string, in CreateInput) (Recommendation, error) {
	if strings.TrimSpace(patientID) == "" || strings.TrimSpace(createdByUserID) == "" {
		return Recommendation{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Medication) == "" {
		return Recommendation{}, ErrInvalidInput
	}
	if in.DoseMg <= 0 {
		return Recommendation{}, ErrInvalidInput
	}
	if in.DurationDays < 0 {
		return Recommendation{}, ErrInvalidInput
	}

	route := in.Route
	if route == "" {
		route = RouteOral
	}
	if !IsValidRoute(route) {
		return Recommendation{}, ErrInvalidInput
	}

	src := in.Source
	if src == "" {
		src = SourceManual
	}
	if src != SourceManual && src != SourceAIAnalysis {
		return Recommendation{}, ErrInvalidInput
	}

	unit := strings.TrimSpace(in.DoseUnit)
	if unit == "" {
		unit = "mg"
	}

	now := s.now()

	// Una recomendación nueva de IA supera a las activas de IA previas para
	// el mismo medicamento. Las manuales nunca se superan automáticamente.
	if src == SourceAIAnalysis {
		if err := s.supersedeActiveAI(ctx, patientID, in.Medication, now); err != nil {
			return Recommendation{}, err
		}
	}

	rec := Recommendation{
		ID:               uuid.NewString(),
		PatientID:        patientID,
		Medication:       strings.TrimSpace(in.Medication),
		DoseMg:           in.DoseMg,
		DoseUnit:         unit,
		Route:            route,
		Frequency:        strings.TrimSpace(in.Frequency),
		DurationDays:     in.DurationDays,
		RationaleSummary: strings.TrimSpace(in.RationaleSummary),
		Warnings:         in.Warnings,
		Source:           src,
		Status:           StatusActive,
		CreatedByUserID:  createdByUserID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return Recommendation{}, err
	}
	return rec, nil
}

func (s *Service) supersedeActiveAI(ctx context.Context, patientID, medication string, at time.Time) error {
	prev, err := s.repo.ListByPatient(ctx, patientID, ListFilter{
		Statuses:   []Status{StatusActive},
		Sources:    []Source{SourceAIAnalysis},
		Medication: medication,
	})
	if err != nil {
		return err
	}
	for _, old := range prev {
		if err := s.repo.SetStatus(ctx, old.ID, StatusSuperseded, at); err != nil {
			return err
		}
	}
	return nil
}

// GetForPatient valida que la recomendación pertenezca al paciente.
func (s *Service) GetForPatient(ctx context.Context, patientID, id string) (Recommendation, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Recommendation{}, err
	}
	if rec.PatientID != patientID {
		return Recommendation{}, ErrNotFound
	}
	return rec, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID string, filter ListFilter) ([]Recommendation, error) {
	return s.repo.ListByPatient(ctx, patientID, filter)
}

// Void anula la recomendación (no se borra). Anular una ya anulada es no-op.
func (s *Service) Void(ctx context.Context, patientID, id string) (Recommendation, error) {
	rec, err := s.GetForPatient(ctx, patientID, id)
	if err != nil {
		return Recommendation{}, err
	}
	if rec.Status == StatusVoided {
		return rec, nil
	}

	if err := s.repo.SetStatus(ctx, rec.ID, StatusVoided, s.now()); err != nil {
		return Recommendation{}, err
	}
	return s.repo.GetByID(ctx, rec.ID)
}
