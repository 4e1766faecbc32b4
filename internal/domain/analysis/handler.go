package analysis

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"pediatric-dosage/internal/domain/documents"
	"pediatric-dosage/internal/domain/patients"
	"pediatric-dosage/internal/domain/recommendations"
	"pediatric-dosage/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Post("/patients/{patientID}/analyze", analyzeHandler(svc))
}

// analyzeRequest es el cuerpo de la consulta de análisis.
// `document_id` y `content_base64` son excluyentes.
type analyzeRequest struct {
	Question   string `json:"question"`
	Medication string `json:"medication"`

	DocumentID    string `json:"document_id"`
	ContentBase64 string `json:"content_base64"`
	MimeType      string `json:"mime_type"`
}

// analyzeResponse es el resultado del análisis. Con `parse_ok=false` solo
// viene `fallback_text` con el texto crudo del modelo.
type analyzeResponse struct {
	ParseOK bool `json:"parse_ok"`

	Summary         string                   `json:"summary,omitempty"`
	Warnings        []string                 `json:"warnings,omitempty"`
	Recommendations []analyzedRecommendation `json:"recommendations,omitempty"`

	FallbackText string `json:"fallback_text,omitempty"`
}

type analyzedRecommendation struct {
	ID               string                 `json:"id"`
	Medication       string                 `json:"medication"`
	DoseMg           float64                `json:"dose_mg"`
	DoseUnit         string                 `json:"dose_unit"`
	Route            recommendations.Route  `json:"route"`
	Frequency        string                 `json:"frequency"`
	DurationDays     int                    `json:"duration_days"`
	RationaleSummary string                 `json:"rationale_summary"`
	Warnings         []string               `json:"warnings"`
	Status           recommendations.Status `json:"status"`
	CreatedAt        time.Time              `json:"created_at"`
}

// analyzeHandler godoc
// @Summary Análisis de dosificación asistido por IA
// @Description Arma la consulta con la ficha del paciente (y un documento opcional, por ID o inline en base64), hace una única llamada al modelo generativo y devuelve el resultado normalizado. Si el modelo no devuelve JSON válido, responde 200 con `parse_ok=false` y el texto crudo. Las recomendaciones parseadas se persisten en la historia con las advertencias del chequeo por peso/edad.
// @Tags analysis
// @Accept json
// @Produce json
// @Param patientID path string true "ID del paciente"
// @Param payload body analyzeRequest true "Consulta; document_id y content_base64 son excluyentes"
// @Success 200 {object} analyzeResponse
// @Failure 400 {string} string "invalid json / adjunto inválido"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "patient not found / document not found"
// @Failure 502 {string} string "upstream ai error"
// @Failure 503 {string} string "analyzer not configured"
// @Router /patients/{patientID}/analyze [post]
func analyzeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if !svc.Available() {
			http.Error(w, "analyzer not configured", http.StatusServiceUnavailable)
			return
		}

		var req analyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		outcome, err := svc.Analyze(r.Context(), chi.URLParam(r, "patientID"), claims.UserID, Input{
			Question:      req.Question,
			Medication:    req.Medication,
			DocumentID:    req.DocumentID,
			ContentBase64: req.ContentBase64,
			MimeType:      req.MimeType,
		})
		if err != nil {
			writeAnalysisError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAnalyzeResponse(outcome))
	}
}

func writeAnalysisError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrAttachmentUnsupported):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, patients.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, patients.ErrNotFound):
		http.Error(w, "patient not found", http.StatusNotFound)
	case errors.Is(err, documents.ErrNotFound):
		http.Error(w, "document not found", http.StatusNotFound)
	case errors.Is(err, ErrAnalyzerUnavailable):
		http.Error(w, "analyzer not configured", http.StatusServiceUnavailable)
	case errors.Is(err, ErrUpstream):
		http.Error(w, "upstream ai error", http.StatusBadGateway)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toAnalyzeResponse(o Outcome) analyzeResponse {
	out := analyzeResponse{
		ParseOK:      o.ParseOK,
		Summary:      o.Summary,
		Warnings:     o.Warnings,
		FallbackText: o.FallbackText,
	}
	for _, rec := range o.Recommendations {
		warnings := rec.Warnings
		if warnings == nil {
			warnings = []string{}
		}
		out.Recommendations = append(out.Recommendations, analyzedRecommendation{
			ID:               rec.ID,
			Medication:       rec.Medication,
			DoseMg:           rec.DoseMg,
			DoseUnit:         rec.DoseUnit,
			Route:            rec.Route,
			Frequency:        rec.Frequency,
			DurationDays:     rec.DurationDays,
			RationaleSummary: rec.RationaleSummary,
			Warnings:         warnings,
			Status:           rec.Status,
			CreatedAt:        rec.CreatedAt,
		})
	}
	return out
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para no crear helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
