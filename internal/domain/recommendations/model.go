package recommendations

import "time"

// Recommendation es una recomendación de dosis registrada en la historia del
// paciente, ya sea producida por el análisis de IA o cargada manualmente.
type Recommendation struct {
	ID        string
	PatientID string

	Medication   string
	DoseMg       float64
	DoseUnit     string // "mg", "ml", "mg/kg", etc.
	Route        Route
	Frequency    string // texto por ahora: "cada 8h"
	DurationDays int

	RationaleSummary string
	Warnings         []string

	Source Source
	Status Status

	CreatedByUserID string

	CreatedAt time.Time
	UpdatedAt time.Time
}
