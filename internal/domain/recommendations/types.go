package recommendations

// Source indica cómo se originó la recomendación.
type Source string

const (
	SourceAIAnalysis Source = "ai_analysis"
	SourceManual     Source = "manual"
)

// Status define el ciclo de vida de una recomendación.
// Nunca se borra: se anula (voided) o queda superada (superseded).
type Status string

const (
	StatusActive     Status = "active"
	StatusSuperseded Status = "superseded"
	StatusVoided     Status = "voided"
)

// Route es la vía de administración.
type Route string

const (
	RouteOral          Route = "oral"
	RouteIntravenous   Route = "intravenous"
	RouteIntramuscular Route = "intramuscular"
	RouteRectal        Route = "rectal"
	RouteTopical       Route = "topical"
	RouteOther         Route = "other"
)

func IsValidRoute(r Route) bool {
	switch r {
	case RouteOral, RouteIntravenous, RouteIntramuscular, RouteRectal, RouteTopical, RouteOther:
		return true
	}
	return false
}
