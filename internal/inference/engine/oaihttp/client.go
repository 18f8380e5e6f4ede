package oaihttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/optima-backend/internal/config"
	"github.com/yungbote/optima-backend/internal/inference/engine"
)

var tracer = otel.Tracer("github.com/yungbote/optima-backend/internal/inference/engine/oaihttp")

type Engine struct {
	baseURL string
	apiKey  string

	chatCompletionsPath string
	timeout             time.Duration

	jsonSchemaMode           string
	jsonSchemaMaxPromptBytes int

	httpClient *http.Client
}

func New(cfg config.EngineConfig) (*Engine, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("oai_http: base_url required")
	}

	chatPath := strings.TrimSpace(cfg.ChatCompletionsPath)
	if chatPath == "" {
		chatPath = "/v1/chat/completions"
	}

	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	timeout := cfg.Timeout.Duration
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	mode := strings.ToLower(strings.TrimSpace(cfg.JSONSchema.Mode))
	if mode == "" {
		mode = "auto"
	}
	maxPromptBytes := cfg.JSONSchema.MaxPromptBytes
	if maxPromptBytes <= 0 {
		maxPromptBytes = 16 << 10
	}

	return &Engine{
		baseURL:                  baseURL,
		apiKey:                   strings.TrimSpace(cfg.APIKey),
		chatCompletionsPath:      chatPath,
		timeout:                  timeout,
		jsonSchemaMode:           mode,
		jsonSchemaMaxPromptBytes: maxPromptBytes,
		httpClient:               &http.Client{Transport: tr},
	}, nil
}

// NewWithHTTPClient is intended for tests; it avoids network access by using a custom RoundTripper.
func NewWithHTTPClient(cfg config.EngineConfig, httpClient *http.Client) (*Engine, error) {
	e, err := New(cfg)
	if err != nil {
		return nil, err
	}
	if httpClient != nil {
		e.httpClient = httpClient
	}
	return e, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`

	// Optional OpenAI-compatible extensions supported by vLLM/SGLang variants.
	ResponseFormat map[string]any `json:"response_format,omitempty"`
	GuidedJSON     any            `json:"guided_json,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content,omitempty"`
		} `json:"message,omitempty"`
		Text string `json:"text,omitempty"`
	} `json:"choices"`
}

func (e *Engine) GenerateText(ctx context.Context, model string, messages []engine.Message, opts engine.GenerateOptions) (string, error) {
	ctx, span := tracer.Start(ctx, "oaihttp.GenerateText")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.model", model),
		attribute.Int("llm.messages", len(messages)),
	)

	chatMsgs := toChatMessages(messages)
	if len(chatMsgs) == 0 {
		return "", errors.New("no messages")
	}

	var resp chatCompletionResponse
	if err := e.doJSON(ctx, http.MethodPost, e.chatCompletionsPath, e.buildChatRequest(model, chatMsgs, opts), &resp); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upstream call failed")
		return "", err
	}

	text := extractChatText(resp)
	if strings.TrimSpace(text) == "" {
		span.SetStatus(codes.Error, "empty completion")
		return "", ErrEmptyCompletion
	}
	if opts.JSONSchema != nil {
		text = sanitizeJSONText(text)
	}
	return text, nil
}

func (e *Engine) buildChatRequest(model string, messages []chatMessage, opts engine.GenerateOptions) chatCompletionRequest {
	req := chatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: opts.Temperature,
	}
	if opts.JSONSchema == nil {
		return req
	}

	useGuided := e.jsonSchemaMode == "guided_json" || e.jsonSchemaMode == "auto"
	usePrompt := e.jsonSchemaMode == "prompt" || e.jsonSchemaMode == "auto"

	if useGuided {
		req.ResponseFormat = map[string]any{"type": "json_object"}
		if opts.JSONSchema.Schema != nil {
			req.GuidedJSON = opts.JSONSchema.Schema
		}
	}
	if usePrompt {
		req.Messages = append(req.Messages, chatMessage{
			Role:    "system",
			Content: e.jsonSchemaPrompt(opts.JSONSchema),
		})
	}
	return req
}

func (e *Engine) jsonSchemaPrompt(s *engine.JSONSchema) string {
	var schemaText string
	if s.Schema != nil {
		if b, err := json.Marshal(s.Schema); err == nil && len(b) <= e.jsonSchemaMaxPromptBytes {
			schemaText = string(b)
		}
	}

	var b strings.Builder
	b.WriteString("Return ONLY a valid JSON value that conforms to the provided JSON Schema. Do not include markdown or commentary.\n")
	if name := strings.TrimSpace(s.Name); name != "" {
		b.WriteString("Schema name: ")
		b.WriteString(name)
		b.WriteString("\n")
	}
	if schemaText != "" {
		b.WriteString("Schema:\n")
		b.WriteString(schemaText)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

func toChatMessages(messages []engine.Message) []chatMessage {
	out := make([]chatMessage, 0, len(messages))
	for _, m := range messages {
		role := strings.TrimSpace(m.Role)
		content := strings.TrimSpace(m.Content)
		if role == "" || content == "" {
			continue
		}
		out = append(out, chatMessage{Role: role, Content: content})
	}
	return out
}

func extractChatText(resp chatCompletionResponse) string {
	for _, c := range resp.Choices {
		if strings.TrimSpace(c.Message.Content) != "" {
			return c.Message.Content
		}
		if strings.TrimSpace(c.Text) != "" {
			return c.Text
		}
	}
	return ""
}

// sanitizeJSONText strips a surrounding ```json fence; the content itself is not validated here.
func sanitizeJSONText(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	firstNL := strings.IndexByte(s, '\n')
	if firstNL == -1 {
		return strings.TrimSpace(strings.Trim(s, "`"))
	}
	s = s[firstNL+1:]
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

func (e *Engine) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}
}

func (e *Engine) doJSON(ctx context.Context, method string, path string, body any, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, e.baseURL+path, &buf)
	if err != nil {
		return err
	}
	e.setHeaders(req)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if out == nil {
		return nil
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &MalformedResponseError{Body: string(raw), Err: err}
	}
	return nil
}
