package postgres

import (
	"context"
	"database/sql"
	"strings"

	"pediatric-dosage/internal/domain/documents"
)

type DocumentsRepo struct {
	db *sql.DB
}

func NewDocumentsRepo(db *sql.DB) *DocumentsRepo {
	return &DocumentsRepo{db: db}
}

func (r *DocumentsRepo) Create(ctx context.Context, d documents.Document) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO documents (
			id, patient_id,
			file_name, mime_type, size_bytes,
			content,
			uploaded_by_user_id,
			created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		d.ID,
		d.PatientID,
		d.FileName,
		d.MimeType,
		d.SizeBytes,
		d.Content,
		d.UploadedByUserID,
		d.CreatedAt,
	)
	return err
}

func (r *DocumentsRepo) GetByID(ctx context.Context, id string) (documents.Document, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return documents.Document{}, documents.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, patient_id,
			file_name, mime_type, size_bytes,
			content,
			uploaded_by_user_id,
			created_at
		FROM documents
		WHERE id = $1
	`, id)

	var d documents.Document
	if err := row.Scan(
		&d.ID,
		&d.PatientID,
		&d.FileName,
		&d.MimeType,
		&d.SizeBytes,
		&d.Content,
		&d.UploadedByUserID,
		&d.CreatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return documents.Document{}, documents.ErrNotFound
		}
		return documents.Document{}, err
	}

	return d, nil
}

// ListByPatient devuelve solo metadatos: el contenido se pide por ID.
func (r *DocumentsRepo) ListByPatient(ctx context.Context, patientID string) ([]documents.Document, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, patient_id,
			file_name, mime_type, size_bytes,
			uploaded_by_user_id,
			created_at
		FROM documents
		WHERE patient_id = $1
		ORDER BY created_at DESC
	`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]documents.Document, 0)
	for rows.Next() {
		var d documents.Document
		if err := rows.Scan(
			&d.ID,
			&d.PatientID,
			&d.FileName,
			&d.MimeType,
			&d.SizeBytes,
			&d.UploadedByUserID,
			&d.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, d)
	}

	return out, rows.Err()
}

func (r *DocumentsRepo) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return documents.ErrNotFound
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return err
	}

	n, _ := res.RowsAffected()
	if n == 0 {
		return documents.ErrNotFound
	}
	return nil
}
