package dosing

// Rule define el rango de dosificación pediátrica de referencia para un
// medicamento: mg/kg por toma, techo por toma y techo diario.
// MaxAgeMonths = 0 significa sin límite superior de edad.
type Rule struct {
	Medication string
	Aliases    []string

	MinAgeMonths int
	MaxAgeMonths int

	MinMgPerKgDose float64
	MaxMgPerKgDose float64

	MaxSingleDoseMg float64
	MaxDailyMg      float64

	Routes []string
}

// rules es la fuente de verdad de los rangos de referencia.
// Valores orientativos de prospectos pediátricos habituales; el chequeo
// advierte, nunca prescribe.
var rules = []Rule{
	{
		Medication:      "amoxicillin",
		Aliases:         []string{"amoxicilina"},
		MinAgeMonths:    1,
		MinMgPerKgDose:  10,
		MaxMgPerKgDose:  30,
		MaxSingleDoseMg: 1000,
		MaxDailyMg:      3000,
		Routes:          []string{"oral"},
	},
	{
		Medication:      "paracetamol",
		Aliases:         []string{"acetaminophen", "acetaminofén", "acetaminofen"},
		MinAgeMonths:    0,
		MinMgPerKgDose:  10,
		MaxMgPerKgDose:  15,
		MaxSingleDoseMg: 1000,
		MaxDailyMg:      4000,
		Routes:          []string{"oral", "rectal", "intravenous"},
	},
	{
		Medication:      "ibuprofen",
		Aliases:         []string{"ibuprofeno"},
		MinAgeMonths:    6,
		MinMgPerKgDose:  5,
		MaxMgPerKgDose:  10,
		MaxSingleDoseMg: 600,
		MaxDailyMg:      2400,
		Routes:          []string{"oral"},
	},
	{
		Medication:      "azithromycin",
		Aliases:         []string{"azitromicina"},
		MinAgeMonths:    6,
		MinMgPerKgDose:  5,
		MaxMgPerKgDose:  12,
		MaxSingleDoseMg: 500,
		MaxDailyMg:      500,
		Routes:          []string{"oral"},
	},
	{
		Medication:      "cefalexin",
		Aliases:         []string{"cephalexin", "cefalexina"},
		MinAgeMonths:    1,
		MinMgPerKgDose:  6,
		MaxMgPerKgDose:  25,
		MaxSingleDoseMg: 1000,
		MaxDailyMg:      4000,
		Routes:          []string{"oral"},
	},
}

// FindRule busca la regla por nombre de medicamento o alias (case-insensitive).
func FindRule(medication string) (Rule, bool) {
	key := normalize(medication)
	if key == "" {
		return Rule{}, false
	}
	for _, r := range rules {
		if normalize(r.Medication) == key {
			return r, true
		}
		for _, a := range r.Aliases {
			if normalize(a) == key {
				return r, true
			}
		}
	}
	return Rule{}, false
}

// Medications devuelve los medicamentos con regla cargada.
func Medications() []string {
	out := make([]string, 0, len(rules))
	for _, r := range rules {
		out = append(out, r.Medication)
	}
	return out
}
