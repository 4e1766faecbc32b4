package patients

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"pediatric-dosage/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/patients", func(pr chi.Router) {
		pr.Post("/", createPatientHandler(svc))
		pr.Get("/", listPatientsHandler(svc))

		pr.Get("/{patientID}", getPatientHandler(svc))
		pr.Patch("/{patientID}", updatePatientHandler(svc))
		pr.Delete("/{patientID}", deletePatientHandler(svc))
	})
}

// createPatientRequest es el cuerpo para registrar un paciente.
type createPatientRequest struct {
	Name       string  `json:"name"`
	Sex        string  `json:"sex" enums:"male,female,unknown"`
	BirthDate  string  `json:"birth_date"` // YYYY-MM-DD opcional
	WeightKg   float64 `json:"weight_kg"`
	HeightCm   float64 `json:"height_cm"`
	Allergies  string  `json:"allergies"`
	Conditions string  `json:"conditions"`
	Notes      string  `json:"notes"`
}

// patientResponse representa la ficha devuelta por la API.
type patientResponse struct {
	ID              string     `json:"id"`
	ClinicianUserID string     `json:"clinician_user_id"`
	Name            string     `json:"name"`
	Sex             Sex        `json:"sex"`
	BirthDate       *time.Time `json:"birth_date,omitempty"`
	AgeMonths       int        `json:"age_months"` // -1 si no hay fecha de nacimiento
	WeightKg        float64    `json:"weight_kg"`
	HeightCm        float64    `json:"height_cm"`
	Allergies       string     `json:"allergies"`
	Conditions      string     `json:"conditions"`
	Notes           string     `json:"notes"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type updatePatientRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	Name       *string  `json:"name"`
	Sex        *string  `json:"sex"`
	BirthDate  *string  `json:"birth_date"` // YYYY-MM-DD; null = limpiar
	WeightKg   *float64 `json:"weight_kg"`
	HeightCm   *float64 `json:"height_cm"`
	Allergies  *string  `json:"allergies"`
	Conditions *string  `json:"conditions"`
	Notes      *string  `json:"notes"`
}

// patchableFields son las claves que acepta el PATCH.
var patchableFields = map[string]bool{
	"name":       true,
	"sex":        true,
	"birth_date": true,
	"weight_kg":  true,
	"height_cm":  true,
	"allergies":  true,
	"conditions": true,
	"notes":      true,
}

// createPatientHandler godoc
// @Summary Registrar paciente
// @Description Crea la ficha de un paciente pediátrico. El clínico autenticado queda como dueño. Autenticación: `X-Debug-User-ID` (dev) o `Authorization: Bearer <token>` (prod).
// @Tags patients
// @Accept json
// @Produce json
// @Param payload body createPatientRequest true "Datos del paciente; birth_date en formato YYYY-MM-DD"
// @Success 201 {object} patientResponse
// @Failure 400 {string} string "invalid json / reglas de negocio"
// @Failure 401 {string} string "unauthorized"
// @Router /patients [post]
func createPatientHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createPatientRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var bd *time.Time
		if strings.TrimSpace(req.BirthDate) != "" {
			t, err := time.Parse("2006-01-02", req.BirthDate)
			if err != nil {
				http.Error(w, "birth_date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			bd = &t
		}

		p, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			Name:       req.Name,
			Sex:        req.Sex,
			BirthDate:  bd,
			WeightKg:   req.WeightKg,
			HeightCm:   req.HeightCm,
			Allergies:  req.Allergies,
			Conditions: req.Conditions,
			Notes:      req.Notes,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toPatientResponse(p, svc.now()))
	}
}

// listPatientsHandler godoc
// @Summary Listar pacientes
// @Description Lista los pacientes del clínico autenticado, ordenados por fecha de alta.
// @Tags patients
// @Produce json
// @Success 200 {array} patientResponse
// @Failure 401 {string} string "unauthorized"
// @Router /patients [get]
func listPatientsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByClinician(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		now := svc.now()
		out := make([]patientResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPatientResponse(p, now))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

// getPatientHandler godoc
// @Summary Ver ficha de paciente
// @Tags patients
// @Produce json
// @Param patientID path string true "ID del paciente"
// @Success 200 {object} patientResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "patient not found"
// @Router /patients/{patientID} [get]
func getPatientHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		p, err := svc.GetOwned(r.Context(), chi.URLParam(r, "patientID"), claims.UserID)
		if err != nil {
			writePatientError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toPatientResponse(p, svc.now()))
	}
}

// updatePatientHandler godoc
// @Summary Actualizar ficha de paciente
// @Description PATCH parcial. Los campos ausentes no se tocan; `birth_date: null` limpia la fecha.
// @Tags patients
// @Accept json
// @Produce json
// @Param patientID path string true "ID del paciente"
// @Param payload body updatePatientRequest true "Campos a modificar"
// @Success 200 {object} patientResponse
// @Failure 400 {string} string "invalid json / reglas de negocio"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "patient not found"
// @Router /patients/{patientID} [patch]
func updatePatientHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		// Para soportar birth_date: null hay que detectar presencia del campo.
		// Estrategia: decodificar a map primero y re-decodificar al struct.
		// DisallowUnknownFields no aplica sobre un map, así que las claves
		// se validan a mano contra patchableFields.
		var raw map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		for k := range raw {
			if !patchableFields[k] {
				http.Error(w, "unknown field: "+k, http.StatusBadRequest)
				return
			}
		}

		var req updatePatientRequest
		{
			b, _ := json.Marshal(raw)
			if err := json.Unmarshal(b, &req); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
		}

		bd := PatchField[time.Time]{}
		if v, exists := raw["birth_date"]; exists {
			bd.Present = true
			if string(v) != "null" {
				var s string
				if err := json.Unmarshal(v, &s); err != nil {
					http.Error(w, "birth_date must be YYYY-MM-DD or null", http.StatusBadRequest)
					return
				}
				t, err := time.Parse("2006-01-02", s)
				if err != nil {
					http.Error(w, "birth_date must be YYYY-MM-DD or null", http.StatusBadRequest)
					return
				}
				bd.Value = &t
			}
		}

		updated, err := svc.Update(r.Context(), chi.URLParam(r, "patientID"), claims.UserID, UpdateInput{
			Name:       req.Name,
			Sex:        req.Sex,
			BirthDate:  bd,
			WeightKg:   req.WeightKg,
			HeightCm:   req.HeightCm,
			Allergies:  req.Allergies,
			Conditions: req.Conditions,
			Notes:      req.Notes,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ErrForbidden):
				http.Error(w, "forbidden", http.StatusForbidden)
			case errors.Is(err, ErrNotFound):
				http.Error(w, "patient not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toPatientResponse(updated, svc.now()))
	}
}

// deletePatientHandler godoc
// @Summary Eliminar ficha de paciente
// @Description Borra la ficha junto con sus documentos y recomendaciones.
// @Tags patients
// @Param patientID path string true "ID del paciente"
// @Success 204 {string} string "sin contenido"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "patient not found"
// @Router /patients/{patientID} [delete]
func deletePatientHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if err := svc.Delete(r.Context(), chi.URLParam(r, "patientID"), claims.UserID); err != nil {
			writePatientError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func writePatientError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "patient not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toPatientResponse(p Patient, now time.Time) patientResponse {
	return patientResponse{
		ID:              p.ID,
		ClinicianUserID: p.ClinicianUserID,
		Name:            p.Name,
		Sex:             p.Sex,
		BirthDate:       p.BirthDate,
		AgeMonths:       p.AgeMonths(now),
		WeightKg:        p.WeightKg,
		HeightCm:        p.HeightCm,
		Allergies:       p.Allergies,
		Conditions:      p.Conditions,
		Notes:           p.Notes,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para no crear helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
