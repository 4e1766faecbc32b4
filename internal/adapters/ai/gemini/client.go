package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pediatric-dosage/internal/ports/ai"

	"google.golang.org/genai"
)

var (
	ErrNotConfigured = errors.New("gemini client not configured")
	ErrUpstream      = errors.New("gemini upstream error")
)

const defaultModel = "gemini-2.5-flash"

// Config del cliente Gemini. APIKey y Model normalmente vienen de env vars
// en el servicio que lo instancie (GEMINI_API_KEY, GEMINI_MODEL).
type Config struct {
	APIKey string
	Model  string
}

// Client implementa ai.Analyzer contra la API generativa de Google.
type Client struct {
	client *genai.Client
	model  string
}

func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, ErrNotConfigured
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: key,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	return &Client{
		client: client,
		model:  model,
	}, nil
}

// Analyze hace una única llamada al modelo y normaliza la respuesta.
// Un fallo de parseo NO es error: devuelve ParseOK=false con el texto crudo.
func (c *Client) Analyze(ctx context.Context, req ai.Request) (ai.Result, error) {
	if c == nil || c.client == nil {
		return ai.Result{}, ErrNotConfigured
	}

	parts := []*genai.Part{
		genai.NewPartFromText(buildUserPrompt(req)),
	}
	if req.Attachment != nil && len(req.Attachment.Data) > 0 {
		parts = append(parts, genai.NewPartFromBytes(req.Attachment.Data, req.Attachment.MimeType))
	}

	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.2),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return ai.Result{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return ai.Result{}, fmt.Errorf("%w: empty response", ErrUpstream)
	}

	return parseAnalysis(text), nil
}
