// services/ai_service.go - AI assistant proxy with fixed prompt templates
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Prem30-jr/Hack-Tracker/apperr"
)

const fallbackAIResponse = "Sorry, I couldn't generate a response right now. Please try again."

// Generator produces a completion for a fully built prompt. The
// production implementation talks to the Gemini REST API; tests
// substitute doubles.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type AIService struct {
	generator Generator
	timeout   time.Duration
}

func NewAIService(generator Generator, timeout time.Duration) *AIService {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &AIService{generator: generator, timeout: timeout}
}

// Assist builds the prompt for the given context type and forwards it
// to the generator. Unknown types pass the prompt through unchanged.
func (s *AIService) Assist(ctx context.Context, prompt, contextType string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", apperr.Validation("Prompt is required")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.generator.Generate(ctx, buildPrompt(prompt, contextType))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", apperr.DependencyTimeout("AI assistance currently unavailable.")
		}
		return "", apperr.Dependency("AI assistance currently unavailable.", err)
	}
	if strings.TrimSpace(text) == "" {
		// A response with no usable text is logged upstream; the
		// client still gets a definitive answer.
		return fallbackAIResponse, nil
	}
	return text, nil
}

func buildPrompt(prompt, contextType string) string {
	switch contextType {
	case "refine_problem":
		return "You are a professional hackathon mentor. \n" +
			"Refine the following problem statement for clarity, technical relevance, and impact.\n" +
			"Do not introduce new ideas.\n\nProblem Statement:\n" + prompt
	case "solution_approach":
		return "Provide a structured solution approach suitable for a hackathon submission.\n" +
			"Include architecture overview and feasibility.\n" +
			"Do not write code.\n\nProject Idea:\n" + prompt
	case "module_breakdown":
		return "Break the following hackathon project into 4–5 technical modules.\n" +
			"For each module, give:\n- Module name\n- Responsibility\n\nProject:\n" + prompt
	case "ppt_outline":
		return "Generate a professional PPT outline for a first-round hackathon submission.\n" +
			"Use short slide titles and bullet points.\n\nProject:\n" + prompt
	case "debug_code":
		return "Explain the following code snippet and identify bugs.\n" +
			"Do not rewrite full code.\n" +
			"Only explain issues and suggest fixes.\n\nCode:\n" + prompt
	default:
		return prompt
	}
}

// GeminiClient calls the Gemini generateContent REST endpoint.
type GeminiClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func NewGeminiClient(apiKey string) *GeminiClient {
	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = "gemini-flash-latest"
	}
	return &GeminiClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: "https://generativelanguage.googleapis.com/v1beta",
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// WithBaseURL points the client at a different endpoint, used in tests.
func (c *GeminiClient) WithBaseURL(baseURL string) *GeminiClient {
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil && parsed.Error.Message != "" {
			return "", fmt.Errorf("gemini: %s", parsed.Error.Message)
		}
		return "", fmt.Errorf("gemini: unexpected status %d", resp.StatusCode)
	}

	var sb strings.Builder
	for _, candidate := range parsed.Candidates {
		for _, part := range candidate.Content.Parts {
			sb.WriteString(part.Text)
		}
		break
	}
	return sb.String(), nil
}
