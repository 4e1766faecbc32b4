package gemini

import (
	"strings"
	"testing"

	"pediatric-dosage/internal/ports/ai"
)

func TestBuildUserPrompt_FullRequest(t *testing.T) {
	p := buildUserPrompt(ai.Request{
		PatientName: "Ana Gómez",
		AgeMonths:   23,
		WeightKg:    12.5,
		HeightCm:    88,
		Allergies:   "penicilina",
		Conditions:  "otitis media aguda",
		Notes:       "fiebre 38.5",
		Medication:  "azitromicina",
		Question:    "¿dosis y duración?",
		Attachment:  &ai.Attachment{MimeType: "application/pdf", Data: []byte("%PDF")},
	})

	for _, want := range []string{
		"Patient name: Ana Gómez",
		"Age: 23 months",
		"Weight: 12.5 kg",
		"Height: 88.0 cm",
		"Known allergies: penicilina",
		"Conditions: otitis media aguda",
		"Clinical notes: fiebre 38.5",
		"Medication under consideration: azitromicina",
		"Clinician question: ¿dosis y duración?",
		"document for this patient is attached",
	} {
		if !strings.Contains(p, want) {
			t.Fatalf("prompt missing %q:\n%s", want, p)
		}
	}
}

func TestBuildUserPrompt_OmitsEmptyFields(t *testing.T) {
	p := buildUserPrompt(ai.Request{
		PatientName: "Ana",
		AgeMonths:   -1,
		WeightKg:    10,
	})

	if !strings.Contains(p, "Age: unknown") {
		t.Fatalf("expected unknown age line:\n%s", p)
	}
	for _, banned := range []string{"Height:", "Known allergies:", "Conditions:", "Clinical notes:", "Medication under consideration:", "Clinician question:", "attached"} {
		if strings.Contains(p, banned) {
			t.Fatalf("prompt should omit %q:\n%s", banned, p)
		}
	}
}
