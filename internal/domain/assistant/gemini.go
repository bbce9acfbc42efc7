package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// contentGenerator is the subset of *genai.Models used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini answers prompts with a Gemini model.
type Gemini struct {
	models contentGenerator
	model  string
}

// NewGemini creates a Gemini responder for the given API key.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Gemini{models: client.Models, model: model}, nil
}

func (g *Gemini) Model() string { return g.model }

var instructions = map[string]string{
	TaskGenerate:  "You assist clinical research coordinators. Answer the request concisely.",
	TaskAnalyze:   "Review these clinical study eligibility criteria. Point out criteria that may limit enrollment in two or three sentences.",
	TaskOptimize:  "Suggest how this clinical study could reach its enrollment target faster. Keep it to three sentences.",
	TaskSummarize: "Summarize this clinical research document in three sentences. Focus on the requested analysis type.",
	TaskChat:      "You are a helpful assistant for a clinical research team. Reply briefly.",
}

func (g *Gemini) Respond(ctx context.Context, p Prompt) (string, error) {
	instruction, ok := instructions[p.Task]
	if !ok {
		return "", fmt.Errorf("unknown task %q", p.Task)
	}
	text := p.Text
	if p.Topic != "" {
		text = "Analysis type: " + p.Topic + "\n\n" + text
	}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(instruction, genai.RoleUser),
	}
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(text), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	out := strings.TrimSpace(resp.Text())
	if out == "" {
		return "", errors.New("gemini returned no text")
	}
	return out, nil
}
