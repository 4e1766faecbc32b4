package analysis

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"pediatric-dosage/internal/domain/documents"
	"pediatric-dosage/internal/domain/dosing"
	"pediatric-dosage/internal/domain/patients"
	"pediatric-dosage/internal/domain/recommendations"
	"pediatric-dosage/internal/ports/ai"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrAnalyzerUnavailable   = errors.New("analyzer not available")
	ErrUpstream              = errors.New("upstream analyzer error")
	ErrAttachmentUnsupported = errors.New("unsupported attachment")
)

// Service orquesta el análisis de dosificación: arma la consulta con los
// datos del paciente (+ documento opcional), llama al analizador, cruza el
// resultado con la tabla de dosificación y persiste las recomendaciones.
type Service struct {
	patients *patients.Service
	docs     *documents.Service
	recs     *recommendations.Service
	analyzer ai.Analyzer
	now      func() time.Time
}

func NewService(
	patientsSvc *patients.Service,
	docsSvc *documents.Service,
	recsSvc *recommendations.Service,
	analyzer ai.Analyzer,
) *Service {
	return &Service{
		patients: patientsSvc,
		docs:     docsSvc,
		recs:     recsSvc,
		analyzer: analyzer,
		now:      time.Now,
	}
}

func (s *Service) Available() bool {
	return s.analyzer != nil
}

type Input struct {
	Question   string
	Medication string

	// Documento ya adjunto a la ficha...
	DocumentID string
	// ...o adjunto inline. Excluyentes.
	ContentBase64 string
	MimeType      string
}

// Outcome es el resultado del análisis. Si ParseOK es false solo viene
// FallbackText; no se persiste nada.
type Outcome struct {
	ParseOK bool

	Summary         string
	Warnings        []string
	Recommendations []recommendations.Recommendation

	FallbackText string
}

func (s *Service) Analyze(ctx context.Context, patientID, clinicianUserID string, in Input) (Outcome, error) {
	if s.analyzer == nil {
		return Outcome{}, ErrAnalyzerUnavailable
	}

	p, err := s.patients.GetOwned(ctx, patientID, clinicianUserID)
	if err != nil {
		return Outcome{}, err
	}

	attachment, err := s.resolveAttachment(ctx, patientID, in)
	if err != nil {
		return Outcome{}, err
	}

	now := s.now()

	res, err := s.analyzer.Analyze(ctx, ai.Request{
		PatientName: p.Name,
		AgeMonths:   p.AgeMonths(now),
		WeightKg:    p.WeightKg,
		HeightCm:    p.HeightCm,
		Allergies:   p.Allergies,
		Conditions:  p.Conditions,
		Notes:       p.Notes,
		Medication:  in.Medication,
		Question:    in.Question,
		Attachment:  attachment,
	})
	if err != nil {
		return Outcome{}, errors.Join(ErrUpstream, err)
	}

	if !res.ParseOK {
		return Outcome{
			ParseOK:      false,
			FallbackText: res.FallbackText,
		}, nil
	}

	out := Outcome{
		ParseOK:  true,
		Summary:  res.Summary,
		Warnings: res.Warnings,
	}

	for _, item := range res.Recommendations {
		warnings := []string{}

		// El chequeo determinista corre siempre sobre lo que propuso el modelo.
		checks := dosing.Check(dosing.CheckInput{
			WeightKg:    p.WeightKg,
			AgeMonths:   p.AgeMonths(now),
			Medication:  item.Medication,
			DoseMg:      item.DoseMg,
			Route:       item.Route,
			DosesPerDay: item.DosesPerDay,
		})
		for _, c := range checks {
			warnings = append(warnings, c.Message)
		}

		// Vía fuera del enum => other; el chequeo ya dejó su advertencia.
		route := recommendations.Route(strings.ToLower(strings.TrimSpace(item.Route)))
		if route != "" && !recommendations.IsValidRoute(route) {
			route = recommendations.RouteOther
		}

		rec, err := s.recs.Create(ctx, patientID, clinicianUserID, recommendations.CreateInput{
			Medication:       item.Medication,
			DoseMg:           item.DoseMg,
			DoseUnit:         item.DoseUnit,
			Route:            route,
			Frequency:        item.Frequency,
			DurationDays:     item.DurationDays,
			RationaleSummary: item.Rationale,
			Warnings:         warnings,
			Source:           recommendations.SourceAIAnalysis,
		})
		if err != nil {
			// Un ítem inválido del modelo no tumba el análisis completo.
			if errors.Is(err, recommendations.ErrInvalidInput) {
				out.Warnings = append(out.Warnings, "se descartó una recomendación inválida del modelo: "+item.Medication)
				continue
			}
			return Outcome{}, err
		}

		out.Recommendations = append(out.Recommendations, rec)
	}

	return out, nil
}

func (s *Service) resolveAttachment(ctx context.Context, patientID string, in Input) (*ai.Attachment, error) {
	hasStored := strings.TrimSpace(in.DocumentID) != ""
	hasInline := strings.TrimSpace(in.ContentBase64) != ""

	switch {
	case hasStored && hasInline:
		return nil, ErrInvalidInput
	case hasStored:
		d, err := s.docs.GetForPatient(ctx, patientID, strings.TrimSpace(in.DocumentID))
		if err != nil {
			return nil, err
		}
		return &ai.Attachment{MimeType: d.MimeType, Data: d.Content}, nil
	case hasInline:
		mime := strings.ToLower(strings.TrimSpace(in.MimeType))
		if !documents.IsAllowedMimeType(mime) {
			return nil, ErrAttachmentUnsupported
		}
		data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(in.ContentBase64))
		if err != nil {
			return nil, ErrInvalidInput
		}
		if len(data) == 0 || len(data) > documents.MaxContentBytes {
			return nil, ErrInvalidInput
		}
		return &ai.Attachment{MimeType: mime, Data: data}, nil
	default:
		return nil, nil
	}
}
