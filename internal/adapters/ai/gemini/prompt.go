package gemini

import (
	"fmt"
	"strings"

	"pediatric-dosage/internal/ports/ai"
)

// systemPrompt exige JSON estricto con el esquema que espera parseAnalysis.
const systemPrompt = `You are a clinical decision-support assistant for pediatric medication dosing. Return ONLY valid JSON with this schema:
{
  "summary": string (2-3 short sentences, plain clinical language),
  "recommendations": [
    {
      "medication": string (generic name, lowercase),
      "dose_mg": number (single dose in milligrams),
      "dose_unit": string ("mg" unless the form demands otherwise),
      "route": string (one of: oral, intravenous, intramuscular, rectal, topical, other),
      "frequency": string (e.g. "every 8 hours"),
      "doses_per_day": number,
      "duration_days": number,
      "rationale": string (1-2 sentences tied to weight/age)
    }
  ] (0-5 items),
  "warnings": string[] (0-6 items: allergies, interactions, age limits, red flags)
}
Dose by weight (mg/kg) using the patient data provided. Never exceed adult maximum doses. If the data is insufficient for a safe recommendation, return an empty recommendations array and explain why in summary and warnings. Do not add any text outside the JSON.`

// buildUserPrompt arma el prompt de usuario campo por campo.
// Los campos vacíos se omiten para no inducir al modelo a inventarlos.
func buildUserPrompt(req ai.Request) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Patient name: %s\n", strings.TrimSpace(req.PatientName))
	if req.AgeMonths >= 0 {
		fmt.Fprintf(&sb, "Age: %d months\n", req.AgeMonths)
	} else {
		sb.WriteString("Age: unknown\n")
	}
	fmt.Fprintf(&sb, "Weight: %.1f kg\n", req.WeightKg)
	if req.HeightCm > 0 {
		fmt.Fprintf(&sb, "Height: %.1f cm\n", req.HeightCm)
	}
	if s := strings.TrimSpace(req.Allergies); s != "" {
		fmt.Fprintf(&sb, "Known allergies: %s\n", s)
	}
	if s := strings.TrimSpace(req.Conditions); s != "" {
		fmt.Fprintf(&sb, "Conditions: %s\n", s)
	}
	if s := strings.TrimSpace(req.Notes); s != "" {
		fmt.Fprintf(&sb, "Clinical notes: %s\n", s)
	}
	if s := strings.TrimSpace(req.Medication); s != "" {
		fmt.Fprintf(&sb, "Medication under consideration: %s\n", s)
	}
	if s := strings.TrimSpace(req.Question); s != "" {
		fmt.Fprintf(&sb, "Clinician question: %s\n", s)
	}
	if req.Attachment != nil {
		sb.WriteString("An EHR document for this patient is attached; use it as additional clinical context.\n")
	}

	return sb.String()
}
