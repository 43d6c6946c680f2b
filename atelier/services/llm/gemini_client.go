package llm

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	"atelier/atelier/config"
	httputils "atelier/atelier/utils/http"
	"atelier/atelier/utils/logging"

	"go.uber.org/zap"
)

// GeminiClient talks to the Generative Language API
// (models/<model>:generateContent). The API key travels as a query
// parameter, not a bearer header.
type GeminiClient struct {
	baseURL string
	apiKey  string
	model   string
}

func NewGeminiClient(cfg config.Config) *GeminiClient {
	return &GeminiClient{
		baseURL: cfg.GeminiBaseURL,
		apiKey:  cfg.GeminiAPIKey,
		model:   cfg.GeminiModel,
	}
}

type generateContentRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (r generateContentResponse) text() string {
	var b strings.Builder
	for _, cand := range r.Candidates {
		for _, p := range cand.Content.Parts {
			b.WriteString(p.Text)
		}
		break // only the first candidate
	}
	return b.String()
}

func (c *GeminiClient) Run(ctx context.Context, prompt string) (string, error) {
	defer logging.LogDuration(ctx, "gemini_run")()

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		c.baseURL, c.model, url.QueryEscape(c.apiKey))

	req := generateContentRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
	}
	var resp generateContentResponse
	if err := httputils.PostJSON(ctx, endpoint, req, &resp); err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned")
	}
	return resp.text(), nil
}

// RunStream uses the SSE streaming endpoint and forwards text deltas.
func (c *GeminiClient) RunStream(ctx context.Context, prompt string) (<-chan string, error) {
	defer logging.LogDuration(ctx, "gemini_run_stream")()

	endpoint := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse&key=%s",
		c.baseURL, c.model, url.QueryEscape(c.apiKey))

	req := generateContentRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
	}
	body, err := httputils.PostStream(ctx, endpoint, req)
	if err != nil {
		return nil, err
	}

	ch := make(chan string)

	go func() {
		defer func() {
			close(ch)
			body.Close()
		}()

		reader := bufio.NewReader(body)
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			line, err := reader.ReadString('\n')
			if err != nil {
				if err != io.EOF {
					logging.ErrorLogger.Error("gemini stream read error", zap.Error(err))
				}
				return
			}

			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if strings.HasPrefix(line, "data:") {
				line = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			}
			if line == "[DONE]" {
				return
			}

			var chunk generateContentResponse
			if err := json.Unmarshal([]byte(line), &chunk); err != nil {
				logging.ErrorLogger.Error("gemini stream JSON parse error",
					zap.Error(err), zap.String("raw_line", line))
				continue
			}

			if text := chunk.text(); text != "" {
				select {
				case ch <- text:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}
