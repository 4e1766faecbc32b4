package gemini

import (
	"encoding/json"
	"strings"

	"pediatric-dosage/internal/ports/ai"
)

// analysisPayload es el esquema que promete systemPrompt.
type analysisPayload struct {
	Summary         string          `json:"summary"`
	Recommendations []ai.DosageItem `json:"recommendations"`
	Warnings        []string        `json:"warnings"`
}

// parseAnalysis normaliza el texto del modelo: quita fences de markdown,
// recorta desde la primera '{' hasta la última '}' y decodifica. Si nada de
// eso produce JSON válido, devuelve el texto crudo como fallback.
func parseAnalysis(text string) ai.Result {
	raw, ok := extractJSON(text)
	if !ok {
		return ai.Result{ParseOK: false, FallbackText: text}
	}

	var payload analysisPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ai.Result{ParseOK: false, FallbackText: text}
	}

	// Recomendaciones sin medicamento o sin dosis no sirven de nada;
	// se descartan en vez de propagar basura.
	recs := make([]ai.DosageItem, 0, len(payload.Recommendations))
	for _, item := range payload.Recommendations {
		item.Medication = strings.ToLower(strings.TrimSpace(item.Medication))
		if item.Medication == "" || item.DoseMg <= 0 {
			continue
		}
		if strings.TrimSpace(item.DoseUnit) == "" {
			item.DoseUnit = "mg"
		}
		recs = append(recs, item)
	}

	return ai.Result{
		ParseOK:         true,
		Summary:         strings.TrimSpace(payload.Summary),
		Recommendations: recs,
		Warnings:        payload.Warnings,
	}
}

// extractJSON tolera respuestas envueltas en ```json ... ``` o con texto
// alrededor del objeto.
func extractJSON(text string) ([]byte, bool) {
	s := strings.TrimSpace(text)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return nil, false
	}

	return []byte(s[start : end+1]), true
}
