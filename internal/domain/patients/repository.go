package patients

import "context"

type Repository interface {
	Create(ctx context.Context, p Patient) error
	Update(ctx context.Context, p Patient) error
	GetByID(ctx context.Context, id string) (Patient, error)
	ListByClinician(ctx context.Context, clinicianUserID string) ([]Patient, error)

	// Delete borra la ficha. El adapter es responsable de cascadear
	// documentos y recomendaciones asociados.
	Delete(ctx context.Context, id string) error
}
