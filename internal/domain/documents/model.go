package documents

import "time"

// Document es un documento clínico (EHR) adjunto a la ficha de un paciente.
// El contenido se guarda decodificado; por la API viaja en base64.
type Document struct {
	ID        string
	PatientID string

	FileName  string
	MimeType  string
	SizeBytes int
	Content   []byte

	UploadedByUserID string

	CreatedAt time.Time
}
