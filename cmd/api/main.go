package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pediatric-dosage/internal/adapters/ai/gemini"
	"pediatric-dosage/internal/adapters/auth/supabase"
	"pediatric-dosage/internal/platform/logger"
	"pediatric-dosage/internal/ports/ai"
	"pediatric-dosage/internal/ports/auth"
	"pediatric-dosage/internal/router"
)

// @title Pediatric Dosage API
// @version 1.0
// @description API para fichas de pacientes pediátricos, documentos clínicos y recomendaciones de dosis asistidas por IA.
// @BasePath /
func main() {
	log := logger.NewFromEnv()

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	// Auth: solo si Supabase está configurado. Sin verifier => modo dev (X-Debug-User-ID).
	var verifier auth.AuthVerifier
	sbClient := supabase.NewClient(supabase.Config{
		BaseURL: os.Getenv("SUPABASE_URL"),
		AnonKey: os.Getenv("SUPABASE_ANON_KEY"),
	})
	if sbClient.IsConfigured() {
		verifier = supabase.NewVerifier(sbClient)
	} else {
		log.Warn("supabase auth not configured, running in dev mode", nil)
	}

	// Analyzer: solo si hay API key. Sin analyzer => /analyze responde 503.
	var analyzer ai.Analyzer
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		client, err := gemini.NewClient(context.Background(), gemini.Config{
			APIKey: key,
			Model:  os.Getenv("GEMINI_MODEL"),
		})
		if err != nil {
			log.Error("gemini client init failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		analyzer = client
	} else {
		log.Warn("GEMINI_API_KEY not set, analysis endpoint disabled", nil)
	}

	r := router.NewRouter(router.Options{
		AuthVerifier: verifier,
		Analyzer:     analyzer,
		Logger:       log,
	})

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": addr})
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			log.Error("server error", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
	case sig := <-stop:
		log.Info("shutting down", map[string]any{"signal": sig.String()})
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("shutdown error", map[string]any{"error": err.Error()})
		}
	}
}
