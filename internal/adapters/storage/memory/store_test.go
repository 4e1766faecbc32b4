package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	mem "pediatric-dosage/internal/adapters/storage/memory"
	"pediatric-dosage/internal/domain/documents"
	"pediatric-dosage/internal/domain/patients"
	"pediatric-dosage/internal/domain/recommendations"
)

func TestStore_DeletePatientCascades(t *testing.T) {
	ctx := context.Background()
	st := mem.NewStore()
	now := time.Now()

	patientsRepo := st.Patients()
	docsRepo := st.Documents()
	recsRepo := st.Recommendations()

	for _, id := range []string{"p-1", "p-2"} {
		if err := patientsRepo.Create(ctx, patients.Patient{
			ID:              id,
			ClinicianUserID: "clin-1",
			Name:            "Paciente " + id,
			WeightKg:        12,
			CreatedAt:       now,
			UpdatedAt:       now,
		}); err != nil {
			t.Fatalf("create patient %s: %v", id, err)
		}
	}

	if err := docsRepo.Create(ctx, documents.Document{
		ID: "doc-1", PatientID: "p-1", FileName: "lab.txt", MimeType: "text/plain", CreatedAt: now,
	}); err != nil {
		t.Fatalf("create doc-1: %v", err)
	}
	if err := docsRepo.Create(ctx, documents.Document{
		ID: "doc-2", PatientID: "p-2", FileName: "rx.pdf", MimeType: "application/pdf", CreatedAt: now,
	}); err != nil {
		t.Fatalf("create doc-2: %v", err)
	}

	if err := recsRepo.Create(ctx, recommendations.Recommendation{
		ID: "rec-1", PatientID: "p-1", Medication: "amoxicillin", DoseMg: 250,
		Status: recommendations.StatusActive, CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		t.Fatalf("create rec-1: %v", err)
	}
	if err := recsRepo.Create(ctx, recommendations.Recommendation{
		ID: "rec-2", PatientID: "p-2", Medication: "paracetamol", DoseMg: 180,
		Status: recommendations.StatusActive, CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		t.Fatalf("create rec-2: %v", err)
	}

	if err := patientsRepo.Delete(ctx, "p-1"); err != nil {
		t.Fatalf("delete p-1: %v", err)
	}

	// Documentos y recomendaciones de p-1 cascadearon
	if docs, _ := docsRepo.ListByPatient(ctx, "p-1"); len(docs) != 0 {
		t.Fatalf("expected 0 documents for deleted patient, got %d", len(docs))
	}
	if recs, _ := recsRepo.ListByPatient(ctx, "p-1", recommendations.ListFilter{}); len(recs) != 0 {
		t.Fatalf("expected 0 recommendations for deleted patient, got %d", len(recs))
	}
	if _, err := docsRepo.GetByID(ctx, "doc-1"); !errors.Is(err, documents.ErrNotFound) {
		t.Fatalf("expected doc-1 gone, got %v", err)
	}
	if _, err := recsRepo.GetByID(ctx, "rec-1"); !errors.Is(err, recommendations.ErrNotFound) {
		t.Fatalf("expected rec-1 gone, got %v", err)
	}

	// Los datos de p-2 no se tocan
	if docs, _ := docsRepo.ListByPatient(ctx, "p-2"); len(docs) != 1 {
		t.Fatalf("expected p-2 document untouched, got %d", len(docs))
	}
	if recs, _ := recsRepo.ListByPatient(ctx, "p-2", recommendations.ListFilter{}); len(recs) != 1 {
		t.Fatalf("expected p-2 recommendation untouched, got %d", len(recs))
	}

	// Segundo delete => not found
	if err := patientsRepo.Delete(ctx, "p-1"); !errors.Is(err, patients.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
