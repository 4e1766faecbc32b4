package patients

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("patient not found")
	ErrForbidden    = errors.New("forbidden")
)

// Peso máximo plausible para una ficha pediátrica (kg).
const maxWeightKg = 200

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
	Name       string
	Sex        string
	BirthDate  *time.Time
	WeightKg   float64
	HeightCm   float64
	Allergies  string
	Conditions string
	Notes      string
}

func (s *Service) Create(ctx context.Context, clinicianUserID string, in CreateInput) (Patient, error) {
	if strings.TrimSpace(clinicianUserID) == "" {
		return Patient{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" {
		return Patient{}, ErrInvalidInput
	}
	if in.WeightKg <= 0 || in.WeightKg > maxWeightKg {
		return Patient{}, ErrInvalidInput
	}
	if in.HeightCm < 0 {
		return Patient{}, ErrInvalidInput
	}

	now := s.now()

	if in.BirthDate != nil && in.BirthDate.After(now) {
		return Patient{}, ErrInvalidInput
	}

	sex := Sex(strings.TrimSpace(in.Sex))
	if sex == "" {
		sex = SexUnknown
	}
	if sex != SexMale && sex != SexFemale && sex != SexUnknown {
		return Patient{}, ErrInvalidInput
	}

	p := Patient{
		ID:              uuid.NewString(),
		ClinicianUserID: clinicianUserID,
		Name:            strings.TrimSpace(in.Name),
		Sex:             sex,
		BirthDate:       in.BirthDate,
		WeightKg:        in.WeightKg,
		HeightCm:        in.HeightCm,
		Allergies:       strings.TrimSpace(in.Allergies),
		Conditions:      strings.TrimSpace(in.Conditions),
		Notes:           strings.TrimSpace(in.Notes),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Patient{}, err
	}
	return p, nil
}

// GetOwned devuelve la ficha solo si pertenece al clínico autenticado.
func (s *Service) GetOwned(ctx context.Context, id, clinicianUserID string) (Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Patient{}, err
	}
	if p.ClinicianUserID != clinicianUserID {
		return Patient{}, ErrForbidden
	}
	return p, nil
}

func (s *Service) ListByClinician(ctx context.Context, clinicianUserID string) ([]Patient, error) {
	return s.repo.ListByClinician(ctx, clinicianUserID)
}

// PatchField permite distinguir "campo ausente" de "campo enviado como null".
type PatchField[T any] struct {
	Present bool
	Value   *T
}

type UpdateInput struct {
	Name       *string
	Sex        *string
	BirthDate  PatchField[time.Time]
	WeightKg   *float64
	HeightCm   *float64
	Allergies  *string
	Conditions *string
	Notes      *string
}

func (s *Service) Update(ctx context.Context, id, clinicianUserID string, in UpdateInput) (Patient, error) {
	p, err := s.GetOwned(ctx, id, clinicianUserID)
	if err != nil {
		return Patient{}, err
	}

	now := s.now()

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Patient{}, ErrInvalidInput
		}
		p.Name = name
	}
	if in.Sex != nil {
		sex := Sex(strings.TrimSpace(*in.Sex))
		if sex != SexMale && sex != SexFemale && sex != SexUnknown {
			return Patient{}, ErrInvalidInput
		}
		p.Sex = sex
	}
	if in.BirthDate.Present {
		// null => limpiar fecha de nacimiento
		if in.BirthDate.Value == nil {
			p.BirthDate = nil
		} else {
			if in.BirthDate.Value.After(now) {
				return Patient{}, ErrInvalidInput
			}
			bd := *in.BirthDate.Value
			p.BirthDate = &bd
		}
	}
	if in.WeightKg != nil {
		if *in.WeightKg <= 0 || *in.WeightKg > maxWeightKg {
			return Patient{}, ErrInvalidInput
		}
		p.WeightKg = *in.WeightKg
	}
	if in.HeightCm != nil {
		if *in.HeightCm < 0 {
			return Patient{}, ErrInvalidInput
		}
		p.HeightCm = *in.HeightCm
	}
	if in.Allergies != nil {
		p.Allergies = strings.TrimSpace(*in.Allergies)
	}
	if in.Conditions != nil {
		p.Conditions = strings.TrimSpace(*in.Conditions)
	}
	if in.Notes != nil {
		p.Notes = strings.TrimSpace(*in.Notes)
	}

	p.UpdatedAt = now

	if err := s.repo.Update(ctx, p); err != nil {
		return Patient{}, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id, clinicianUserID string) error {
	if _, err := s.GetOwned(ctx, id, clinicianUserID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
