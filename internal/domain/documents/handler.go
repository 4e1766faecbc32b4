package documents

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"pediatric-dosage/internal/domain/patients"
	"pediatric-dosage/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, patientsSvc *patients.Service) {
	r.Route("/patients/{patientID}/documents", func(dr chi.Router) {
		dr.Post("/", uploadDocumentHandler(svc, patientsSvc))
		dr.Get("/", listDocumentsHandler(svc, patientsSvc))

		dr.Get("/{documentID}", getDocumentHandler(svc, patientsSvc))
		dr.Delete("/{documentID}", deleteDocumentHandler(svc, patientsSvc))
	})
}

// uploadDocumentRequest es el cuerpo para adjuntar un documento clínico.
type uploadDocumentRequest struct {
	FileName      string `json:"file_name"`
	MimeType      string `json:"mime_type" enums:"application/pdf,image/png,image/jpeg,text/plain"`
	ContentBase64 string `json:"content_base64"`
}

// documentResponse son los metadatos del documento. El contenido solo se
// incluye al pedir un documento puntual.
type documentResponse struct {
	ID               string    `json:"id"`
	PatientID        string    `json:"patient_id"`
	FileName         string    `json:"file_name"`
	MimeType         string    `json:"mime_type"`
	SizeBytes        int       `json:"size_bytes"`
	UploadedByUserID string    `json:"uploaded_by_user_id"`
	CreatedAt        time.Time `json:"created_at"`

	ContentBase64 string `json:"content_base64,omitempty"`
}

// uploadDocumentHandler godoc
// @Summary Adjuntar documento clínico
// @Description Adjunta un documento EHR (base64) a la ficha del paciente. Solo el clínico dueño.
// @Tags documents
// @Accept json
// @Produce json
// @Param patientID path string true "ID del paciente"
// @Param payload body uploadDocumentRequest true "Documento en base64; máximo 10 MiB decodificado"
// @Success 201 {object} documentResponse
// @Failure 400 {string} string "invalid json / base64 inválido / mime no soportado"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "patient not found"
// @Router /patients/{patientID}/documents [post]
func uploadDocumentHandler(svc *Service, patientsSvc *patients.Service) http.HandlerFunc {
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

		var req uploadDocumentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		d, err := svc.Upload(r.Context(), patientID, claims.UserID, UploadInput{
			FileName:      req.FileName,
			MimeType:      req.MimeType,
			ContentBase64: req.ContentBase64,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toDocumentResponse(d, false))
	}
}

// listDocumentsHandler godoc
// @Summary Listar documentos del paciente
// @Description Metadatos de los documentos adjuntos, más recientes primero. Sin contenido.
// @Tags documents
// @Produce json
// @Param patientID path string true "ID del paciente"
// @Success 200 {array} documentResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "patient not found"
// @Router /patients/{patientID}/documents [get]
func listDocumentsHandler(svc *Service, patientsSvc *patients.Service) http.HandlerFunc {
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

		items, err := svc.ListByPatient(r.Context(), patientID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]documentResponse, 0, len(items))
		for _, d := range items {
			out = append(out, toDocumentResponse(d, false))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

// getDocumentHandler godoc
// @Summary Ver documento
// @Description Devuelve metadatos y contenido (base64) de un documento puntual.
// @Tags documents
// @Produce json
// @Param patientID path string true "ID del paciente"
// @Param documentID path string true "ID del documento"
// @Success 200 {object} documentResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "document not found"
// @Router /patients/{patientID}/documents/{documentID} [get]
func getDocumentHandler(svc *Service, patientsSvc *patients.Service) http.HandlerFunc {
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

		d, err := svc.GetForPatient(r.Context(), patientID, chi.URLParam(r, "documentID"))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "document not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, toDocumentResponse(d, true))
	}
}

// deleteDocumentHandler godoc
// @Summary Eliminar documento
// @Tags documents
// @Param patientID path string true "ID del paciente"
// @Param documentID path string true "ID del documento"
// @Success 204 {string} string "sin contenido"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "document not found"
// @Router /patients/{patientID}/documents/{documentID} [delete]
func deleteDocumentHandler(svc *Service, patientsSvc *patients.Service) http.HandlerFunc {
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

		if err := svc.Delete(r.Context(), patientID, chi.URLParam(r, "documentID")); err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "document not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
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

func toDocumentResponse(d Document, withContent bool) documentResponse {
	out := documentResponse{
		ID:               d.ID,
		PatientID:        d.PatientID,
		FileName:         d.FileName,
		MimeType:         d.MimeType,
		SizeBytes:        d.SizeBytes,
		UploadedByUserID: d.UploadedByUserID,
		CreatedAt:        d.CreatedAt,
	}
	if withContent {
		out.ContentBase64 = base64.StdEncoding.EncodeToString(d.Content)
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
