package patients

import (
	"context"
	"testing"
	"time"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	byID map[string]Patient
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Patient{}}
}

func (r *testRepo) Create(ctx context.Context, p Patient) error {
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) Update(ctx context.Context, p Patient) error {
	if _, ok := r.byID[p.ID]; !ok {
		return ErrNotFound
	}
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Patient, error) {
	p, ok := r.byID[id]
	if !ok {
		return Patient{}, ErrNotFound
	}
	return p, nil
}

func (r *testRepo) ListByClinician(ctx context.Context, clinicianUserID string) ([]Patient, error) {
	out := make([]Patient, 0)
	for _, p := range r.byID {
		if p.ClinicianUserID == clinicianUserID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *testRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

// -------------------------
// Tests
// -------------------------

func TestService_Create_DefaultsAndValidation(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	p, err := svc.Create(context.Background(), "clin-1", CreateInput{
		Name:     "  Ana Gómez ",
		WeightKg: 14.5,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if p.Name != "Ana Gómez" {
		t.Fatalf("expected trimmed name, got %q", p.Name)
	}
	if p.Sex != SexUnknown {
		t.Fatalf("expected default sex unknown, got %s", p.Sex)
	}
	if p.CreatedAt != now || p.UpdatedAt != now {
		t.Fatalf("expected CreatedAt/UpdatedAt to be now")
	}
}

func TestService_Create_RejectsBadWeight(t *testing.T) {
	svc := NewService(newTestRepo())

	cases := []float64{0, -3, 250}
	for _, w := range cases {
		_, err := svc.Create(context.Background(), "clin-1", CreateInput{
			Name:     "Ana",
			WeightKg: w,
		})
		if err != ErrInvalidInput {
			t.Fatalf("weight %v: expected ErrInvalidInput, got %v", w, err)
		}
	}
}

func TestService_Create_RejectsFutureBirthDate(t *testing.T) {
	svc := NewService(newTestRepo())

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	future := now.AddDate(0, 0, 1)
	_, err := svc.Create(context.Background(), "clin-1", CreateInput{
		Name:      "Ana",
		WeightKg:  10,
		BirthDate: &future,
	})
	if err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_GetOwned_EnforcesOwnership(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	p, err := svc.Create(context.Background(), "clin-1", CreateInput{Name: "Ana", WeightKg: 10})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if _, err := svc.GetOwned(context.Background(), p.ID, "clin-2"); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden for other clinician, got %v", err)
	}
	if _, err := svc.GetOwned(context.Background(), p.ID, "clin-1"); err != nil {
		t.Fatalf("owner should read own patient: %v", err)
	}
}

func TestService_Update_PatchSemantics(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	now1 := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	now2 := now1.Add(30 * time.Minute)
	svc.now = func() time.Time { return now1 }

	bd := time.Date(2022, 5, 1, 0, 0, 0, 0, time.UTC)
	p, err := svc.Create(context.Background(), "clin-1", CreateInput{
		Name:      "Ana",
		WeightKg:  10,
		BirthDate: &bd,
		Notes:     "control sano",
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	svc.now = func() time.Time { return now2 }

	w := 12.3
	updated, err := svc.Update(context.Background(), p.ID, "clin-1", UpdateInput{
		WeightKg: &w,
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.WeightKg != 12.3 {
		t.Fatalf("expected weight updated, got %v", updated.WeightKg)
	}
	if updated.Name != "Ana" || updated.Notes != "control sano" || updated.BirthDate == nil {
		t.Fatalf("expected untouched fields preserved, got %#v", updated)
	}
	if updated.UpdatedAt != now2 {
		t.Fatalf("expected UpdatedAt refreshed")
	}

	// birth_date: null limpia
	updated, err = svc.Update(context.Background(), p.ID, "clin-1", UpdateInput{
		BirthDate: PatchField[time.Time]{Present: true, Value: nil},
	})
	if err != nil {
		t.Fatalf("Update (clear birth date) error: %v", err)
	}
	if updated.BirthDate != nil {
		t.Fatalf("expected birth date cleared")
	}
}

func TestService_Delete_OwnerOnly(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	p, err := svc.Create(context.Background(), "clin-1", CreateInput{Name: "Ana", WeightKg: 10})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if err := svc.Delete(context.Background(), p.ID, "clin-2"); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := svc.Delete(context.Background(), p.ID, "clin-1"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, err := svc.GetOwned(context.Background(), p.ID, "clin-1"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestPatient_AgeMonths(t *testing.T) {
	at := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	bd := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	p := Patient{BirthDate: &bd}
	if got := p.AgeMonths(at); got != 23 {
		t.Fatalf("expected 23 months, got %d", got)
	}

	bd2 := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	p2 := Patient{BirthDate: &bd2}
	if got := p2.AgeMonths(at); got != 24 {
		t.Fatalf("expected 24 months, got %d", got)
	}

	if got := (Patient{}).AgeMonths(at); got != -1 {
		t.Fatalf("expected -1 without birth date, got %d", got)
	}
}
