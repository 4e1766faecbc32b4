package recommendations

import (
	"context"
	"testing"
	"time"
)

type testRepo struct {
	byID map[string]Recommendation
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Recommendation{}}
}

func (r *testRepo) Create(ctx context.Context, rec Recommendation) error {
	r.byID[rec.ID] = rec
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Recommendation, error) {
	rec, ok := r.byID[id]
	if !ok {
		return Recommendation{}, ErrNotFound
	}
	return rec, nil
}

func (r *testRepo) ListByPatient(ctx context.Context, patientID string, filter ListFilter) ([]Recommendation, error) {
	out := make([]Recommendation, 0)
	for _, rec := range r.byID {
		if rec.PatientID != patientID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, rec.Status) {
			continue
		}
		if len(filter.Sources) > 0 && !containsSource(filter.Sources, rec.Source) {
			continue
		}
		if filter.Medication != "" && rec.Medication != filter.Medication {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *testRepo) SetStatus(ctx context.Context, id string, status Status, at time.Time) error {
	rec, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	rec.Status = status
	rec.UpdatedAt = at
	r.byID[id] = rec
	return nil
}

func containsStatus(ss []Status, s Status) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

func containsSource(ss []Source, s Source) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

func TestService_Create_DefaultsAndValidation(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	rec, err := svc.Create(context.Background(), "pat-1", "clin-1", CreateInput{
		Medication: "amoxicilina",
		DoseMg:     250,
		Frequency:  "cada 8h",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if rec.Route != RouteOral {
		t.Fatalf("expected default route oral, got %s", rec.Route)
	}
	if rec.DoseUnit != "mg" {
		t.Fatalf("expected default unit mg, got %s", rec.DoseUnit)
	}
	if rec.Source != SourceManual || rec.Status != StatusActive {
		t.Fatalf("expected manual/active, got %s/%s", rec.Source, rec.Status)
	}
	if rec.CreatedAt != now || rec.UpdatedAt != now {
		t.Fatalf("expected CreatedAt/UpdatedAt to be now")
	}
}

func TestService_Create_Rejections(t *testing.T) {
	svc := NewService(newTestRepo())

	cases := []struct {
		name string
		in   CreateInput
	}{
		{"missing medication", CreateInput{DoseMg: 100}},
		{"zero dose", CreateInput{Medication: "ibuprofeno", DoseMg: 0}},
		{"negative duration", CreateInput{Medication: "ibuprofeno", DoseMg: 100, DurationDays: -1}},
		{"bad route", CreateInput{Medication: "ibuprofeno", DoseMg: 100, Route: Route("inhalada")}},
	}

	for _, tc := range cases {
		if _, err := svc.Create(context.Background(), "pat-1", "clin-1", tc.in); err != ErrInvalidInput {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", tc.name, err)
		}
	}
}

func TestService_Create_AISupersedesPreviousActiveAI(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	now1 := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	now2 := now1.Add(time.Hour)

	svc.now = func() time.Time { return now1 }
	first, err := svc.Create(context.Background(), "pat-1", "clin-1", CreateInput{
		Medication: "amoxicilina",
		DoseMg:     250,
		Source:     SourceAIAnalysis,
	})
	if err != nil {
		t.Fatalf("Create #1 error: %v", err)
	}

	// Una manual del mismo medicamento no debe ser tocada.
	manual, err := svc.Create(context.Background(), "pat-1", "clin-1", CreateInput{
		Medication: "amoxicilina",
		DoseMg:     300,
		Source:     SourceManual,
	})
	if err != nil {
		t.Fatalf("Create manual error: %v", err)
	}

	svc.now = func() time.Time { return now2 }
	second, err := svc.Create(context.Background(), "pat-1", "clin-1", CreateInput{
		Medication: "amoxicilina",
		DoseMg:     275,
		Source:     SourceAIAnalysis,
	})
	if err != nil {
		t.Fatalf("Create #2 error: %v", err)
	}

	got, _ := repo.GetByID(context.Background(), first.ID)
	if got.Status != StatusSuperseded {
		t.Fatalf("expected first AI rec superseded, got %s", got.Status)
	}
	if got.UpdatedAt != now2 {
		t.Fatalf("expected UpdatedAt refreshed on supersede")
	}

	gotManual, _ := repo.GetByID(context.Background(), manual.ID)
	if gotManual.Status != StatusActive {
		t.Fatalf("expected manual rec untouched, got %s", gotManual.Status)
	}

	gotSecond, _ := repo.GetByID(context.Background(), second.ID)
	if gotSecond.Status != StatusActive {
		t.Fatalf("expected new AI rec active, got %s", gotSecond.Status)
	}
}

func TestService_Void_IdempotentAndScoped(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	rec, err := svc.Create(context.Background(), "pat-1", "clin-1", CreateInput{
		Medication: "paracetamol",
		DoseMg:     150,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	// Paciente equivocado => not found
	if _, err := svc.Void(context.Background(), "pat-2", rec.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for wrong patient, got %v", err)
	}

	voided, err := svc.Void(context.Background(), "pat-1", rec.ID)
	if err != nil {
		t.Fatalf("Void error: %v", err)
	}
	if voided.Status != StatusVoided {
		t.Fatalf("expected voided, got %s", voided.Status)
	}

	// idempotente
	voided2, err := svc.Void(context.Background(), "pat-1", rec.ID)
	if err != nil {
		t.Fatalf("Void #2 error: %v", err)
	}
	if voided2.Status != StatusVoided {
		t.Fatalf("expected voided after second void, got %s", voided2.Status)
	}
}
