package documents

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("document not found")
)

// Límite del contenido decodificado (10 MiB).
const MaxContentBytes = 10 << 20

// Tipos MIME aceptados para documentos clínicos.
var allowedMimeTypes = map[string]bool{
	"application/pdf": true,
	"image/png":       true,
	"image/jpeg":      true,
	"text/plain":      true,
}

func IsAllowedMimeType(mime string) bool {
	return allowedMimeTypes[strings.ToLower(strings.TrimSpace(mime))]
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type UploadInput struct {
	FileName      string
	MimeType      string
	ContentBase64 string
}

func (s *Service) Upload(ctx context.Context, patientID, uploaderUserID string, in UploadInput) (Document, error) {
	if strings.TrimSpace(patientID) == "" || strings.TrimSpace(uploaderUserID) == "" {
		return Document{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.FileName) == "" {
		return Document{}, ErrInvalidInput
	}

	mime := strings.ToLower(strings.TrimSpace(in.MimeType))
	if !IsAllowedMimeType(mime) {
		return Document{}, ErrInvalidInput
	}

	content, err := base64.StdEncoding.DecodeString(strings.TrimSpace(in.ContentBase64))
	if err != nil {
		return Document{}, ErrInvalidInput
	}
	if len(content) == 0 || len(content) > MaxContentBytes {
		return Document{}, ErrInvalidInput
	}

	d := Document{
		ID:               uuid.NewString(),
		PatientID:        patientID,
		FileName:         strings.TrimSpace(in.FileName),
		MimeType:         mime,
		SizeBytes:        len(content),
		Content:          content,
		UploadedByUserID: uploaderUserID,
		CreatedAt:        s.now(),
	}

	if err := s.repo.Create(ctx, d); err != nil {
		return Document{}, err
	}
	return d, nil
}

// GetForPatient devuelve el documento con contenido, validando que pertenezca al paciente.
func (s *Service) GetForPatient(ctx context.Context, patientID, documentID string) (Document, error) {
	d, err := s.repo.GetByID(ctx, documentID)
	if err != nil {
		return Document{}, err
	}
	if d.PatientID != patientID {
		return Document{}, ErrNotFound
	}
	return d, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID string) ([]Document, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

func (s *Service) Delete(ctx context.Context, patientID, documentID string) error {
	if _, err := s.GetForPatient(ctx, patientID, documentID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, documentID)
}
