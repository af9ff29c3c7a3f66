package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.openai.com/v1"

// OpenAIGenerator builds topic content through the chat-completions API.
type OpenAIGenerator struct {
	http    *http.Client
	baseURL string
	apiKey  string
	model   string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string // default gpt-4-turbo
	BaseURL string // override for tests / proxies
	Timeout time.Duration
}

func NewOpenAIGenerator(cfg OpenAIConfig) *OpenAIGenerator {
	if cfg.Model == "" {
		cfg.Model = "gpt-4-turbo"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &OpenAIGenerator{
		http:    &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model            string        `json:"model"`
	Messages         []chatMessage `json:"messages"`
	Temperature      float64       `json:"temperature"`
	MaxTokens        int           `json:"max_tokens"`
	TopP             float64       `json:"top_p"`
	FrequencyPenalty float64       `json:"frequency_penalty"`
	PresencePenalty  float64       `json:"presence_penalty"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
}

func (g *OpenAIGenerator) Generate(ctx context.Context, req Request) (Response, error) {
	payload := chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt(req)},
		},
		Temperature:      0.7,
		MaxTokens:        4000,
		TopP:             1,
		FrequencyPenalty: 0.3,
		PresencePenalty:  0.2,
	}

	// one retry for transient failures
	var lastErr error
	for i := 0; i < 2; i++ {
		resp, err := g.call(ctx, payload)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return Response{}, fmt.Errorf("%w: %v", ErrGeneration, lastErr)
}

func (g *OpenAIGenerator) call(ctx context.Context, payload chatRequest) (Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Response{}, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Response{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	res, err := g.http.Do(httpReq)
	if err != nil {
		return Response{}, err
	}
	defer res.Body.Close()
	if res.StatusCode/100 != 2 {
		return Response{}, fmt.Errorf("chat completion: %s", res.Status)
	}
	var cr chatResponse
	if err := json.NewDecoder(res.Body).Decode(&cr); err != nil {
		return Response{}, err
	}
	if len(cr.Choices) == 0 {
		return Response{}, fmt.Errorf("chat completion: empty choices")
	}
	return parseContent(cr.Choices[0].Message.Content)
}

// parseContent extracts the JSON document from the completion text, which
// models often wrap in a markdown fence.
func parseContent(content string) (Response, error) {
	s := strings.TrimSpace(content)
	if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+3:]
		s = strings.TrimPrefix(s, "json")
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
	}
	s = strings.TrimSpace(s)
	var resp Response
	if err := json.Unmarshal([]byte(s), &resp); err != nil {
		return Response{}, fmt.Errorf("parse generated content: %w", err)
	}
	if len(resp.Modules) == 0 {
		return Response{}, fmt.Errorf("generated content has no modules")
	}
	for mi, m := range resp.Modules {
		if m.Level == 0 {
			resp.Modules[mi].Level = mi + 1
		}
		for qi, q := range m.Questions {
			if len(q.Options) != 4 {
				return Response{}, fmt.Errorf("module %d question %d: want 4 options, got %d", mi+1, qi+1, len(q.Options))
			}
			if q.Answer < 0 || q.Answer > 3 {
				return Response{}, fmt.Errorf("module %d question %d: answer index %d out of range", mi+1, qi+1, q.Answer)
			}
		}
	}
	return resp, nil
}

const systemPrompt = `You are a quiz author. You respond with a single JSON object and nothing else. ` +
	`The object has the shape {"topic": string, "modules": [{"level": int, "title": string, ` +
	`"questions": [{"question": string, "options": [4 strings], "answer": int 0-3, "explanation": string}]}]}.`

func userPrompt(req Request) string {
	return fmt.Sprintf(
		"Create %d modules of %d multiple-choice questions each about %q. "+
			"Difficulty is progressive: level 1 is introductory, level %d is expert. "+
			"Every question has exactly 4 options, one correct answer (a 0-based index), "+
			"and a one-sentence explanation.",
		req.NumModules, req.PerModule, req.Topic, req.NumModules)
}
