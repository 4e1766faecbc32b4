package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"pediatric-dosage/internal/domain/patients"
)

type PatientsRepo struct {
	db *sql.DB
}

func NewPatientsRepo(db *sql.DB) *PatientsRepo {
	return &PatientsRepo{db: db}
}

func (r *PatientsRepo) Create(ctx context.Context, p patients.Patient) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO patients (
			id, clinician_user_id,
			name, sex, birth_date,
			weight_kg, height_cm,
			allergies, conditions, notes,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		p.ID,
		p.ClinicianUserID,
		p.Name,
		string(p.Sex),
		toNullDate(p.BirthDate),
		p.WeightKg,
		p.HeightCm,
		p.Allergies,
		p.Conditions,
		p.Notes,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

func (r *PatientsRepo) Update(ctx context.Context, p patients.Patient) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE patients
		SET
			name = $2,
			sex = $3,
			birth_date = $4,
			weight_kg = $5,
			height_cm = $6,
			allergies = $7,
			conditions = $8,
			notes = $9,
			updated_at = $10
		WHERE id = $1
	`,
		p.ID,
		p.Name,
		string(p.Sex),
		toNullDate(p.BirthDate),
		p.WeightKg,
		p.HeightCm,
		p.Allergies,
		p.Conditions,
		p.Notes,
		p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return patients.ErrNotFound
	}
	return nil
}

func (r *PatientsRepo) GetByID(ctx context.Context, id string) (patients.Patient, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return patients.Patient{}, patients.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, clinician_user_id,
			name, sex, birth_date,
			weight_kg, height_cm,
			allergies, conditions, notes,
			created_at, updated_at
		FROM patients
		WHERE id = $1
	`, id)

	p, err := scanPatient(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return patients.Patient{}, patients.ErrNotFound
		}
		return patients.Patient{}, err
	}
	return p, nil
}

func (r *PatientsRepo) ListByClinician(ctx context.Context, clinicianUserID string) ([]patients.Patient, error) {
	clinicianUserID = strings.TrimSpace(clinicianUserID)
	if clinicianUserID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, clinician_user_id,
			name, sex, birth_date,
			weight_kg, height_cm,
			allergies, conditions, notes,
			created_at, updated_at
		FROM patients
		WHERE clinician_user_id = $1
		ORDER BY created_at ASC
	`, clinicianUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]patients.Patient, 0)
	for rows.Next() {
		p, err := scanPatient(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}

	return out, rows.Err()
}

// Delete borra la ficha y cascadea documentos y recomendaciones en una tx.
func (r *PatientsRepo) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return patients.ErrNotFound
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE patient_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM recommendations WHERE patient_id = $1`, id); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return patients.ErrNotFound
	}

	return tx.Commit()
}

func scanPatient(scan func(dest ...any) error) (patients.Patient, error) {
	var p patients.Patient
	var sex string
	var bd sql.NullTime

	if err := scan(
		&p.ID,
		&p.ClinicianUserID,
		&p.Name,
		&sex,
		&bd,
		&p.WeightKg,
		&p.HeightCm,
		&p.Allergies,
		&p.Conditions,
		&p.Notes,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return patients.Patient{}, err
	}

	p.Sex = patients.Sex(sex)
	if bd.Valid {
		t := bd.Time
		// birth_date es DATE; pgx lo mapea a time.Time midnight UTC
		p.BirthDate = &t
	}

	return p, nil
}

// birth_date es DATE, lo pasamos como NullTime para simplificar
func toNullDate(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
