package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/optima-backend/internal/inference/engine"
	"github.com/yungbote/optima-backend/internal/inference/engine/oaihttp"
	"github.com/yungbote/optima-backend/internal/observability"
	"github.com/yungbote/optima-backend/internal/platform/apierr"
	"github.com/yungbote/optima-backend/internal/platform/ctxutil"
	"github.com/yungbote/optima-backend/internal/platform/logger"
)

const (
	CodeInvalidRequest      = "invalid_request"
	CodeRequestTooLarge     = "request_too_large"
	CodeUpstreamUnavailable = "upstream_unavailable"
	CodeMalformedUpstream   = "malformed_upstream_response"
	CodeMissingFields       = "upstream_missing_fields"
)

const intakeInstruction = `You turn a student's free-form description of their week into structured planning input.
Return ONLY a JSON object with exactly these four fields:
- "subjects": array of strings, one entry per subject or course to study
- "deadlines": array of ISO dates (YYYY-MM-DD), aligned with "subjects"; use "" when a subject has no deadline
- "sport": string describing the sport session, or null if none is mentioned
- "sleep_goal": bedtime as "HH:MM" (24h), or null if none is mentioned
Do not add any other fields. Do not wrap the JSON in markdown.`

var intakeFields = []string{"subjects", "deadlines", "sport", "sleep_goal"}

var intakeSchema = &engine.JSONSchema{
	Name: "study_intake",
	Schema: map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"subjects":   map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"deadlines":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"sport":      map[string]any{"type": []string{"string", "null"}},
			"sleep_goal": map[string]any{"type": []string{"string", "null"}},
		},
		"required": intakeFields,
	},
}

// IntakeResult is the structured form of a free-form planning request. It is
// shaped like the schedule request so clients can post it back unchanged.
type IntakeResult struct {
	Subjects  []string `json:"subjects"`
	Deadlines []string `json:"deadlines"`
	Sport     *string  `json:"sport"`
	SleepGoal *string  `json:"sleep_goal"`
}

type IntakeService interface {
	Parse(ctx context.Context, text string) (*IntakeResult, error)
}

type intakeService struct {
	log     *logger.Logger
	engine  engine.Engine
	model   string
	cache   IntakeCache
	metrics *observability.Metrics
}

// NewIntakeService falls back to a no-op cache when cache is nil. metrics may be nil.
func NewIntakeService(baseLog *logger.Logger, eng engine.Engine, model string, cache IntakeCache, metrics *observability.Metrics) IntakeService {
	if cache == nil {
		cache = NewNoopIntakeCache()
	}
	return &intakeService{
		log:     baseLog.With("service", "IntakeService"),
		engine:  eng,
		model:   strings.TrimSpace(model),
		cache:   cache,
		metrics: metrics,
	}
}

// Parse sends text to the language model once. Upstream failures are never
// retried: transport problems map to 503, unusable replies to 502 with the raw
// reply attached.
func (s *intakeService) Parse(ctx context.Context, text string) (*IntakeResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apierr.New(http.StatusBadRequest, CodeInvalidRequest, errors.New("text is required"))
	}
	logFields := append(ctxutil.LogFields(ctx), "text", text)

	if res, ok, err := s.cache.Get(ctx, text); err != nil {
		s.log.Warn("intake cache read failed", append(logFields, "error", err)...)
	} else if ok {
		s.log.Debug("intake cache hit", logFields...)
		return res, nil
	}

	ctx, span := tracer.Start(ctx, "intake.Parse")
	defer span.End()
	span.SetAttributes(attribute.String("llm.model", s.model), attribute.Int("intake.text_bytes", len(text)))

	start := time.Now()
	res, err := s.call(ctx, text)
	status := "ok"
	if err != nil {
		status = apierr.As(err).Code
	}
	s.metrics.ObserveLLMRequest(s.model, status, time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, status)
		s.log.Warn("intake parse failed", append(logFields, "code", status, "error", err)...)
		return nil, err
	}

	if err := s.cache.Set(ctx, text, res); err != nil {
		s.log.Warn("intake cache write failed", append(logFields, "error", err)...)
	}
	s.log.Debug("intake parsed", append(logFields, "subjects", len(res.Subjects))...)
	return res, nil
}

// call makes the single upstream attempt and classifies its outcome.
func (s *intakeService) call(ctx context.Context, text string) (*IntakeResult, error) {
	raw, err := s.engine.GenerateText(ctx, s.model, []engine.Message{
		{Role: "system", Content: intakeInstruction},
		{Role: "user", Content: text},
	}, engine.GenerateOptions{Temperature: 0, JSONSchema: intakeSchema})
	if err != nil {
		if errors.Is(err, oaihttp.ErrEmptyCompletion) {
			return nil, apierr.WithRaw(http.StatusBadGateway, CodeMalformedUpstream, errors.New("language model returned an empty reply"), "")
		}
		var malformed *oaihttp.MalformedResponseError
		if errors.As(err, &malformed) {
			return nil, apierr.WithRaw(http.StatusBadGateway, CodeMalformedUpstream, err, malformed.Body)
		}
		return nil, apierr.New(http.StatusServiceUnavailable, CodeUpstreamUnavailable, fmt.Errorf("language model unavailable: %w", err))
	}
	return decodeIntake(raw)
}

func decodeIntake(raw string) (*IntakeResult, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, apierr.WithRaw(http.StatusBadGateway, CodeMalformedUpstream, fmt.Errorf("language model returned invalid JSON: %w", err), raw)
	}

	var missing []string
	for _, k := range intakeFields {
		if _, ok := fields[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, apierr.WithRaw(http.StatusBadGateway, CodeMissingFields, fmt.Errorf("language model reply is missing fields: %s", strings.Join(missing, ", ")), raw)
	}

	var res IntakeResult
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return nil, apierr.WithRaw(http.StatusBadGateway, CodeMalformedUpstream, fmt.Errorf("language model reply has wrong field types: %w", err), raw)
	}
	if res.Subjects == nil {
		res.Subjects = []string{}
	}
	if res.Deadlines == nil {
		res.Deadlines = []string{}
	}
	for i := range res.Subjects {
		res.Subjects[i] = strings.TrimSpace(res.Subjects[i])
	}
	for i := range res.Deadlines {
		res.Deadlines[i] = strings.TrimSpace(res.Deadlines[i])
	}
	res.Sport = trimmedOrNil(res.Sport)
	res.SleepGoal = trimmedOrNil(res.SleepGoal)
	return &res, nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
