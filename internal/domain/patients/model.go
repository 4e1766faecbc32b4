package patients

import "time"

// Sex define el sexo del paciente.
// @Enum male, female, unknown
type Sex string

const (
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
	SexUnknown Sex = "unknown"
)

// Patient representa la ficha de un paciente pediátrico registrado por un clínico.
type Patient struct {
	ID              string
	ClinicianUserID string

	Name string
	Sex  Sex

	BirthDate *time.Time
	WeightKg  float64
	HeightCm  float64

	Allergies  string
	Conditions string
	Notes      string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AgeMonths calcula la edad en meses a la fecha dada.
// Si no hay fecha de nacimiento devuelve -1 (desconocida).
func (p Patient) AgeMonths(at time.Time) int {
	if p.BirthDate == nil {
		return -1
	}
	bd := *p.BirthDate
	if bd.After(at) {
		return 0
	}

	months := (at.Year()-bd.Year())*12 + int(at.Month()) - int(bd.Month())
	if at.Day() < bd.Day() {
		months--
	}
	if months < 0 {
		months = 0
	}
	return months
}
