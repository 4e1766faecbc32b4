package documents

import "context"

type Repository interface {
	Create(ctx context.Context, d Document) error
	GetByID(ctx context.Context, id string) (Document, error)

	// ListByPatient devuelve solo metadatos (Content vacío), más recientes primero.
	ListByPatient(ctx context.Context, patientID string) ([]Document, error)
	Delete(ctx context.Context, id string) error
}
