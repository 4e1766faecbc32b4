package ai

import "context"

// Analyzer produce un análisis de dosificación a partir de los datos del
// paciente y un documento opcional. Una llamada, una respuesta: sin retries,
// sin streaming, sin estado.
type Analyzer interface {
	Analyze(ctx context.Context, req Request) (Result, error)
}

// Attachment es un documento clínico que acompaña la consulta.
type Attachment struct {
	MimeType string
	Data     []byte
}

type Request struct {
	PatientName string
	AgeMonths   int // -1 = desconocida
	WeightKg    float64
	HeightCm    float64
	Allergies   string
	Conditions  string
	Notes       string

	// Medication acota la consulta a un medicamento puntual (opcional).
	Medication string
	// Question es la pregunta libre del clínico (opcional).
	Question string

	Attachment *Attachment
}

// DosageItem es una recomendación individual dentro del análisis.
type DosageItem struct {
	Medication   string  `json:"medication"`
	DoseMg       float64 `json:"dose_mg"`
	DoseUnit     string  `json:"dose_unit"`
	Route        string  `json:"route"`
	Frequency    string  `json:"frequency"`
	DosesPerDay  int     `json:"doses_per_day"`
	DurationDays int     `json:"duration_days"`
	Rationale    string  `json:"rationale"`
}

// Result es la respuesta normalizada del modelo.
// Si ParseOK es false, FallbackText trae el texto crudo del modelo y el
// resto de los campos queda vacío.
type Result struct {
	ParseOK bool

	Summary         string
	Recommendations []DosageItem
	Warnings        []string

	FallbackText string
}
