package dosing

import (
	"fmt"
	"strings"
)

// Kind clasifica la advertencia del chequeo de plausibilidad.
type Kind string

const (
	KindNoReference  Kind = "no_reference_range"
	KindBelowRange   Kind = "below_range"
	KindAboveRange   Kind = "above_range"
	KindExceedsCap   Kind = "exceeds_single_dose_cap"
	KindExceedsDaily Kind = "exceeds_daily_cap"
	KindAgeOutside   Kind = "age_outside_range"
	KindRouteUnusual Kind = "route_unusual"
)

type Warning struct {
	Kind    Kind
	Message string
}

type CheckInput struct {
	WeightKg   float64
	AgeMonths  int // -1 = desconocida
	Medication string
	DoseMg     float64
	Route      string

	// DosesPerDay habilita el chequeo del techo diario. 0 = desconocido.
	DosesPerDay int
}

// Check contrasta la dosis contra la tabla de referencia y devuelve
// advertencias. Nunca falla: medicamento desconocido => advertencia única.
func Check(in CheckInput) []Warning {
	rule, ok := FindRule(in.Medication)
	if !ok {
		return []Warning{{
			Kind:    KindNoReference,
			Message: fmt.Sprintf("sin rango de referencia para %q; verificar dosis manualmente", strings.TrimSpace(in.Medication)),
		}}
	}

	out := make([]Warning, 0)

	if in.AgeMonths >= 0 {
		if in.AgeMonths < rule.MinAgeMonths {
			out = append(out, Warning{
				Kind:    KindAgeOutside,
				Message: fmt.Sprintf("%s: edad %d meses por debajo del mínimo de referencia (%d meses)", rule.Medication, in.AgeMonths, rule.MinAgeMonths),
			})
		}
		if rule.MaxAgeMonths > 0 && in.AgeMonths > rule.MaxAgeMonths {
			out = append(out, Warning{
				Kind:    KindAgeOutside,
				Message: fmt.Sprintf("%s: edad %d meses por encima del máximo de referencia (%d meses)", rule.Medication, in.AgeMonths, rule.MaxAgeMonths),
			})
		}
	}

	if in.WeightKg > 0 && in.DoseMg > 0 {
		perKg := in.DoseMg / in.WeightKg
		if perKg < rule.MinMgPerKgDose {
			out = append(out, Warning{
				Kind:    KindBelowRange,
				Message: fmt.Sprintf("%s: %.1f mg/kg por toma está por debajo del rango de referencia (%.1f-%.1f mg/kg)", rule.Medication, perKg, rule.MinMgPerKgDose, rule.MaxMgPerKgDose),
			})
		}
		if perKg > rule.MaxMgPerKgDose {
			out = append(out, Warning{
				Kind:    KindAboveRange,
				Message: fmt.Sprintf("%s: %.1f mg/kg por toma supera el rango de referencia (%.1f-%.1f mg/kg)", rule.Medication, perKg, rule.MinMgPerKgDose, rule.MaxMgPerKgDose),
			})
		}
	}

	if rule.MaxSingleDoseMg > 0 && in.DoseMg > rule.MaxSingleDoseMg {
		out = append(out, Warning{
			Kind:    KindExceedsCap,
			Message: fmt.Sprintf("%s: %.0f mg supera el techo por toma (%.0f mg)", rule.Medication, in.DoseMg, rule.MaxSingleDoseMg),
		})
	}

	if rule.MaxDailyMg > 0 && in.DosesPerDay > 0 {
		daily := in.DoseMg * float64(in.DosesPerDay)
		if daily > rule.MaxDailyMg {
			out = append(out, Warning{
				Kind:    KindExceedsDaily,
				Message: fmt.Sprintf("%s: %.0f mg/día supera el techo diario (%.0f mg)", rule.Medication, daily, rule.MaxDailyMg),
			})
		}
	}

	if route := normalize(in.Route); route != "" && len(rule.Routes) > 0 {
		usual := false
		for _, r := range rule.Routes {
			if normalize(r) == route {
				usual = true
				break
			}
		}
		if !usual {
			out = append(out, Warning{
				Kind:    KindRouteUnusual,
				Message: fmt.Sprintf("%s: vía %q fuera de las habituales (%s)", rule.Medication, route, strings.Join(rule.Routes, ", ")),
			})
		}
	}

	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
