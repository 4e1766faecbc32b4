package router

import (
	"database/sql"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "pediatric-dosage/docs"
	mem "pediatric-dosage/internal/adapters/storage/memory"
	pg "pediatric-dosage/internal/adapters/storage/postgres"
	"pediatric-dosage/internal/domain/analysis"
	"pediatric-dosage/internal/domain/documents"
	"pediatric-dosage/internal/domain/patients"
	"pediatric-dosage/internal/domain/recommendations"
	"pediatric-dosage/internal/middleware"
	"pediatric-dosage/internal/platform/logger"
	"pediatric-dosage/internal/ports/ai"
	"pediatric-dosage/internal/ports/auth"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Opcional: si es nil, POST /patients/{id}/analyze responde 503.
	Analyzer ai.Analyzer

	// Opcional: si es nil, no se loguean requests.
	Logger logger.Logger
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))
	if opts.Logger != nil {
		r.Use(middleware.RequestLogger(opts.Logger))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.Handler())

	var (
		patientRepo patients.Repository
		docRepo     documents.Repository
		recRepo     recommendations.Repository
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			}
		}
	}

	if db != nil {
		patientRepo = pg.NewPatientsRepo(db)
		docRepo = pg.NewDocumentsRepo(db)
		recRepo = pg.NewRecommendationsRepo(db)
	} else {
		st := mem.NewStore()
		patientRepo = st.Patients()
		docRepo = st.Documents()
		recRepo = st.Recommendations()
	}

	// Services por módulo
	patientsSvc := patients.NewService(patientRepo)
	docsSvc := documents.NewService(docRepo)
	recsSvc := recommendations.NewService(recRepo)
	analysisSvc := analysis.NewService(patientsSvc, docsSvc, recsSvc, opts.Analyzer)

	// Rutas por módulo
	patients.RegisterRoutes(r, patientsSvc)
	documents.RegisterRoutes(r, docsSvc, patientsSvc)
	recommendations.RegisterRoutes(r, recsSvc, patientsSvc)
	analysis.RegisterRoutes(r, analysisSvc)

	return r
}
