package recommendations

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pediatric-dosage/internal/domain/dosing"
	"pediatric-dosage/internal/domain/patients"
	"pediatric-dosage/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, patientsSvc *patients.Service) {
	r.Route("/patients/{patientID}/recommendations", func(rr chi.Router) {
		rr.Post("/", createRecommendationHandler(svc, patientsSvc))
		rr.Get("/", listRecommendationsHandler(svc, patientsSvc))

		// Anular (void) recomendación; queda en la historia.
		rr.Post("/{recID}/void", voidRecommendationHandler(svc, patientsSvc))
	})
}

// createRecommendationRequest es el cuerpo para cargar una recomendación manual.
type createRecommendationRequest struct {
	Medication       string   `json:"medication"`
	DoseMg           float64  `json:"dose_mg"`
	DoseUnit         string   `json:"dose_unit"`
	Route            Route    `json:"route" enums:"oral,intravenous,intramuscular,rectal,topical,other"`
	Frequency        string   `json:"frequency"`
	DosesPerDay      int      `json:"doses_per_day"` // opcional, para el chequeo de dosis diaria
	DurationDays     int      `json:"duration_days"`
	RationaleSummary string   `json:"rationale_summary"`
	Warnings         []string `json:"warnings"`
}

// recommendationResponse representa una recomendación devuelta por la API.
type recommendationResponse struct {
	ID               string    `json:"id"`
	PatientID        string    `json:"patient_id"`
	Medication       string    `json:"medication"`
	DoseMg           float64   `json:"dose_mg"`
	DoseUnit         string    `json:"dose_unit"`
	Route            Route     `json:"route"`
	Frequency        string    `json:"frequency"`
	DurationDays     int       `json:"duration_days"`
	RationaleSummary string    `json:"rationale_summary"`
	Warnings         []string  `json:"warnings"`
	Source           Source    `json:"source"`
	Status           Status    `json:"status"`
	CreatedByUserID  string    `json:"created_by_user_id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// createRecommendationHandler godoc
// @Summary Cargar recomendación manual
// @Description Registra una recomendación de dosis cargada por el clínico. Antes de guardar se ejecuta el chequeo de plausibilidad por peso/edad y se agregan advertencias si corresponde.
// @Tags recommendations
// @Accept json
// @Produce json
// @Param patientID path string true "ID del paciente"
// @Param payload body createRecommendationRequest true "Datos de la recomendación"
// @Success 201 {object} recommendationResponse
// @Failure 400 {string} string "invalid json / reglas de negocio"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "patient not found"
// @Router /patients/{patientID}/recommendations [post]
func createRecommendationHandler(svc *Service, patientsSvc *patients.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		patientID := chi.URLParam(r, "patientID")
		p, err := patientsSvc.GetOwned(r.Context(), patientID, claims.UserID)
		if err != nil {
			writeOwnershipError(w, err)
			return
		}

		var req createRecommendationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		// Chequeo de plausibilidad: nunca bloquea, solo agrega advertencias.
		warnings := req.Warnings
		checks := dosing.Check(dosing.CheckInput{
			WeightKg:    p.WeightKg,
			AgeMonths:   p.AgeMonths(svc.now()),
			Medication:  req.Medication,
			DoseMg:      req.DoseMg,
			Route:       string(req.Route),
			DosesPerDay: req.DosesPerDay,
		})
		for _, c := range checks {
			warnings = append(warnings, c.Message)
		}

		rec, err := svc.Create(r.Context(), patientID, claims.UserID, CreateInput{
			Medication:       req.Medication,
			DoseMg:           req.DoseMg,
			DoseUnit:         req.DoseUnit,
			Route:            req.Route,
			Frequency:        req.Frequency,
			DurationDays:     req.DurationDays,
			RationaleSummary: req.RationaleSummary,
			Warnings:         warnings,
			Source:           SourceManual,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toRecommendationResponse(rec))
	}
}

// listRecommendationsHandler godoc
// @Summary Listar recomendaciones del paciente
// @Description Historia de recomendaciones, más recientes primero. Filtros: `status`, `source`, `medication`, `from`/`to` (RFC3339), `limit` (default 50, máx 200).
// @Tags recommendations
// @Produce json
// @Param patientID path string true "ID del paciente"
// @Param status query string false "active | superseded | voided (repetible)"
// @Param source query string false "ai_analysis | manual (repetible)"
// @Param medication query string false "Nombre del medicamento"
// @Param from query string false "RFC3339"
// @Param to query string false "RFC3339"
// @Param limit query int false "Máximo de resultados"
// @Success 200 {array} recommendationResponse
// @Failure 400 {string} string "filtros inválidos"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "patient not found"
// @Router /patients/{patientID}/recommendations [get]
func listRecommendationsHandler(svc *Service, patientsSvc *patients.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		patientID := chi.URLParam(r, "patientID")
		if _, err := patientsSvc.GetOwned(r.Context(), patientID, claims.UserID); err != nil {
			writeOwnershipError(w, err)
			return
		}

		filter, err := parseListFilter(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		items, err := svc.ListByPatient(r.Context(), patientID, filter)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]recommendationResponse, 0, len(items))
		for _, rec := range items {
			out = append(out, toRecommendationResponse(rec))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

// voidRecommendationHandler godoc
// @Summary Anular recomendación
// @Description Marca la recomendación como `voided`. No se borra de la historia. Idempotente.
// @Tags recommendations
// @Produce json
// @Param patientID path string true "ID del paciente"
// @Param recID path string true "ID de la recomendación"
// @Success 200 {object} recommendationResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "recommendation not found"
// @Router /patients/{patientID}/recommendations/{recID}/void [post]
func voidRecommendationHandler(svc *Service, patientsSvc *patients.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		patientID := chi.URLParam(r, "patientID")
		if _, err := patientsSvc.GetOwned(r.Context(), patientID, claims.UserID); err != nil {
			writeOwnershipError(w, err)
			return
		}

		rec, err := svc.Void(r.Context(), patientID, chi.URLParam(r, "recID"))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "recommendation not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, toRecommendationResponse(rec))
	}
}

func parseListFilter(r *http.Request) (ListFilter, error) {
	q := r.URL.Query()
	filter := ListFilter{
		Medication: strings.TrimSpace(q.Get("medication")),
	}

	for _, s := range q["status"] {
		st := Status(strings.TrimSpace(s))
		if st != StatusActive && st != StatusSuperseded && st != StatusVoided {
			return ListFilter{}, errors.New("invalid status filter")
		}
		filter.Statuses = append(filter.Statuses, st)
	}

	for _, s := range q["source"] {
		src := Source(strings.TrimSpace(s))
		if src != SourceAIAnalysis && src != SourceManual {
			return ListFilter{}, errors.New("invalid source filter")
		}
		filter.Sources = append(filter.Sources, src)
	}

	if v := strings.TrimSpace(q.Get("from")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return ListFilter{}, errors.New("from must be RFC3339")
		}
		filter.From = &t
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return ListFilter{}, errors.New("to must be RFC3339")
		}
		filter.To = &t
	}
	if v := strings.TrimSpace(q.Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return ListFilter{}, errors.New("limit must be a non-negative integer")
		}
		filter.Limit = n
	}

	return filter, nil
}

func writeOwnershipError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, patients.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, patients.ErrNotFound):
		http.Error(w, "patient not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toRecommendationResponse(rec Recommendation) recommendationResponse {
	warnings := rec.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	return recommendationResponse{
		ID:               rec.ID,
		PatientID:        rec.PatientID,
		Medication:       rec.Medication,
		DoseMg:           rec.DoseMg,
		DoseUnit:         rec.DoseUnit,
		Route:            rec.Route,
		Frequency:        rec.Frequency,
		DurationDays:     rec.DurationDays,
		RationaleSummary: rec.RationaleSummary,
		Warnings:         warnings,
		Source:           rec.Source,
		Status:           rec.Status,
		CreatedByUserID:  rec.CreatedByUserID,
		CreatedAt:        rec.CreatedAt,
		UpdatedAt:        rec.UpdatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para no crear helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
