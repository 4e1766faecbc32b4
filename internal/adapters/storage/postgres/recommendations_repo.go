package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"pediatric-dosage/internal/domain/recommendations"
)

type RecommendationsRepo struct {
	db *sql.DB
}

func NewRecommendationsRepo(db *sql.DB) *RecommendationsRepo {
	return &RecommendationsRepo{db: db}
}

func (r *RecommendationsRepo) Create(ctx context.Context, rec recommendations.Recommendation) error {
	warnings, err := json.Marshal(rec.Warnings)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO recommendations (
			id, patient_id,
			medication, dose_mg, dose_unit,
			route, frequency, duration_days,
			rationale_summary, warnings,
			source, status,
			created_by_user_id,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`,
		rec.ID,
		rec.PatientID,
		rec.Medication,
		rec.DoseMg,
		rec.DoseUnit,
		string(rec.Route),
		rec.Frequency,
		rec.DurationDays,
		rec.RationaleSummary,
		warnings,
		string(rec.Source),
		string(rec.Status),
		rec.CreatedByUserID,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	return err
}

func (r *RecommendationsRepo) GetByID(ctx context.Context, id string) (recommendations.Recommendation, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return recommendations.Recommendation{}, recommendations.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, patient_id,
			medication, dose_mg, dose_unit,
			route, frequency, duration_days,
			rationale_summary, warnings,
			source, status,
			created_by_user_id,
			created_at, updated_at
		FROM recommendations
		WHERE id = $1
	`, id)

	rec, err := scanRecommendation(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return recommendations.Recommendation{}, recommendations.ErrNotFound
		}
		return recommendations.Recommendation{}, err
	}
	return rec, nil
}

func (r *RecommendationsRepo) ListByPatient(ctx context.Context, patientID string, filter recommendations.ListFilter) ([]recommendations.Recommendation, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return nil, nil
	}

	sb := strings.Builder{}
	sb.WriteString(`
		SELECT
			id, patient_id,
			medication, dose_mg, dose_unit,
			route, frequency, duration_days,
			rationale_summary, warnings,
			source, status,
			created_by_user_id,
			created_at, updated_at
		FROM recommendations
		WHERE patient_id = $1
	`)

	args := []any{patientID}
	argN := 2

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			placeholders = append(placeholders, fmt.Sprintf("$%d", argN))
			args = append(args, string(s))
			argN++
		}
		sb.WriteString(" AND status IN (" + strings.Join(placeholders, ",") + ")")
	}

	if len(filter.Sources) > 0 {
		placeholders := make([]string, 0, len(filter.Sources))
		for _, s := range filter.Sources {
			placeholders = append(placeholders, fmt.Sprintf("$%d", argN))
			args = append(args, string(s))
			argN++
		}
		sb.WriteString(" AND source IN (" + strings.Join(placeholders, ",") + ")")
	}

	if strings.TrimSpace(filter.Medication) != "" {
		// Igualdad case-insensitive, igual que el adapter in-memory.
		sb.WriteString(fmt.Sprintf(" AND lower(medication) = lower($%d)", argN))
		args = append(args, strings.TrimSpace(filter.Medication))
		argN++
	}

	if filter.From != nil {
		sb.WriteString(fmt.Sprintf(" AND created_at >= $%d", argN))
		args = append(args, *filter.From)
		argN++
	}
	if filter.To != nil {
		sb.WriteString(fmt.Sprintf(" AND created_at <= $%d", argN))
		args = append(args, *filter.To)
		argN++
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	sb.WriteString(" ORDER BY created_at DESC")
	sb.WriteString(fmt.Sprintf(" LIMIT $%d", argN))
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]recommendations.Recommendation, 0)
	for rows.Next() {
		rec, err := scanRecommendation(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}

	return out, rows.Err()
}

func (r *RecommendationsRepo) SetStatus(ctx context.Context, id string, status recommendations.Status, at time.Time) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return recommendations.ErrNotFound
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE recommendations
		SET status = $2, updated_at = $3
		WHERE id = $1
	`, id, string(status), at)
	if err != nil {
		return err
	}

	n, _ := res.RowsAffected()
	if n == 0 {
		return recommendations.ErrNotFound
	}
	return nil
}

func scanRecommendation(scan func(dest ...any) error) (recommendations.Recommendation, error) {
	var rec recommendations.Recommendation
	var route, source, status string
	var warnings []byte

	if err := scan(
		&rec.ID,
		&rec.PatientID,
		&rec.Medication,
		&rec.DoseMg,
		&rec.DoseUnit,
		&route,
		&rec.Frequency,
		&rec.DurationDays,
		&rec.RationaleSummary,
		&warnings,
		&source,
		&status,
		&rec.CreatedByUserID,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		return recommendations.Recommendation{}, err
	}

	rec.Route = recommendations.Route(route)
	rec.Source = recommendations.Source(source)
	rec.Status = recommendations.Status(status)

	if len(warnings) > 0 {
		if err := json.Unmarshal(warnings, &rec.Warnings); err != nil {
			return recommendations.Recommendation{}, err
		}
	}

	return rec, nil
}
