package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/yungbote/optima-backend/internal/inference/engine"
	"github.com/yungbote/optima-backend/internal/inference/engine/mock"
	"github.com/yungbote/optima-backend/internal/inference/engine/oaihttp"
	"github.com/yungbote/optima-backend/internal/observability"
	"github.com/yungbote/optima-backend/internal/platform/apierr"
	"github.com/yungbote/optima-backend/internal/platform/logger"
)

type fakeEngine struct {
	reply string
	err   error

	calls    int
	messages []engine.Message
	opts     engine.GenerateOptions
}

func (f *fakeEngine) GenerateText(ctx context.Context, model string, messages []engine.Message, opts engine.GenerateOptions) (string, error) {
	f.calls++
	f.messages = messages
	f.opts = opts
	return f.reply, f.err
}

type memCache struct {
	mu      sync.Mutex
	entries map[string]*IntakeResult
	getErr  error
	setErr  error
}

func newMemCache() *memCache { return &memCache{entries: map[string]*IntakeResult{}} }

func (c *memCache) Get(_ context.Context, text string) (*IntakeResult, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	res, ok := c.entries[IntakeCacheKey(text)]
	return res, ok, nil
}

func (c *memCache) Set(_ context.Context, text string, res *IntakeResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[IntakeCacheKey(text)] = res
	return nil
}

func (c *memCache) Close() error { return nil }

func wantAPIErr(t *testing.T, err error, status int, code string) *apierr.Error {
	t.Helper()
	var ae *apierr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("expected *apierr.Error, got %T %v", err, err)
	}
	if ae.Status != status || ae.Code != code {
		t.Fatalf("status=%d code=%q, want %d %q", ae.Status, ae.Code, status, code)
	}
	return ae
}

func TestIntakeParseSuccess(t *testing.T) {
	eng := &fakeEngine{reply: `{"subjects":[" Math ","Physics"],"deadlines":["2026-11-02",""],"sport":"Football","sleep_goal":null}`}
	svc := NewIntakeService(logger.Nop(), eng, "gpt-4o-mini", nil, nil)

	res, err := svc.Parse(context.Background(), "  Math by Nov 2nd and physics, football, no idea about sleep ")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(res.Subjects) != 2 || res.Subjects[0] != "Math" || res.Subjects[1] != "Physics" {
		t.Fatalf("subjects=%v", res.Subjects)
	}
	if res.Deadlines[0] != "2026-11-02" || res.Deadlines[1] != "" {
		t.Fatalf("deadlines=%v", res.Deadlines)
	}
	if res.Sport == nil || *res.Sport != "Football" {
		t.Fatalf("sport=%v", res.Sport)
	}
	if res.SleepGoal != nil {
		t.Fatalf("sleep_goal=%v", *res.SleepGoal)
	}

	if eng.calls != 1 {
		t.Fatalf("calls=%d", eng.calls)
	}
	if len(eng.messages) != 2 || eng.messages[0].Role != "system" || eng.messages[1].Role != "user" {
		t.Fatalf("messages=%+v", eng.messages)
	}
	if eng.messages[1].Content != "Math by Nov 2nd and physics, football, no idea about sleep" {
		t.Fatalf("user content=%q", eng.messages[1].Content)
	}
	if eng.opts.Temperature != 0 || eng.opts.JSONSchema == nil || eng.opts.JSONSchema.Name != "study_intake" {
		t.Fatalf("opts=%+v", eng.opts)
	}
}

func TestIntakeParseRejectsEmptyText(t *testing.T) {
	eng := &fakeEngine{}
	_, err := NewIntakeService(logger.Nop(), eng, "m", nil, nil).Parse(context.Background(), "   ")
	wantAPIErr(t, err, http.StatusBadRequest, CodeInvalidRequest)
	if eng.calls != 0 {
		t.Fatalf("engine called for empty text")
	}
}

func TestIntakeParseUpstreamFailures(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		err     error
		status  int
		code    string
		wantRaw bool
	}{
		{name: "transport", err: errors.New("dial tcp: connection refused"), status: http.StatusServiceUnavailable, code: CodeUpstreamUnavailable},
		{name: "timeout", err: context.DeadlineExceeded, status: http.StatusServiceUnavailable, code: CodeUpstreamUnavailable},
		{name: "http status", err: &oaihttp.HTTPError{StatusCode: 500, Body: "boom"}, status: http.StatusServiceUnavailable, code: CodeUpstreamUnavailable},
		{name: "empty completion", err: fmt.Errorf("wrap: %w", oaihttp.ErrEmptyCompletion), status: http.StatusBadGateway, code: CodeMalformedUpstream, wantRaw: true},
		{name: "bad envelope", err: &oaihttp.MalformedResponseError{Body: "<html>", Err: errors.New("invalid character")}, reply: "<html>", status: http.StatusBadGateway, code: CodeMalformedUpstream, wantRaw: true},
		{name: "not json", reply: "Sure! Here is your plan", status: http.StatusBadGateway, code: CodeMalformedUpstream, wantRaw: true},
		{name: "json array", reply: `["Math"]`, status: http.StatusBadGateway, code: CodeMalformedUpstream, wantRaw: true},
		{name: "missing field", reply: `{"subjects":["Math"],"deadlines":[""],"sport":null}`, status: http.StatusBadGateway, code: CodeMissingFields, wantRaw: true},
		{name: "wrong type", reply: `{"subjects":"Math","deadlines":[],"sport":null,"sleep_goal":null}`, status: http.StatusBadGateway, code: CodeMalformedUpstream, wantRaw: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := &fakeEngine{reply: tt.reply, err: tt.err}
			cache := newMemCache()
			_, err := NewIntakeService(logger.Nop(), eng, "m", cache, nil).Parse(context.Background(), "Math")
			ae := wantAPIErr(t, err, tt.status, tt.code)
			if eng.calls != 1 {
				t.Fatalf("calls=%d, want exactly one attempt", eng.calls)
			}
			if tt.wantRaw && ae.Raw == nil {
				t.Fatalf("expected raw reply attached")
			}
			if tt.wantRaw && *ae.Raw != tt.reply {
				t.Fatalf("raw=%q want %q", *ae.Raw, tt.reply)
			}
			if !tt.wantRaw && ae.Raw != nil {
				t.Fatalf("unexpected raw %q", *ae.Raw)
			}
			if len(cache.entries) != 0 {
				t.Fatalf("failed parse was cached")
			}
		})
	}
}

func TestIntakeParseUsesCache(t *testing.T) {
	eng := &fakeEngine{reply: `{"subjects":["Math"],"deadlines":[""],"sport":null,"sleep_goal":"22:30"}`}
	cache := newMemCache()
	svc := NewIntakeService(logger.Nop(), eng, "m", cache, nil)

	first, err := svc.Parse(context.Background(), "Math and sleep at 22:30")
	if err != nil {
		t.Fatalf("first Parse: %v", err)
	}
	second, err := svc.Parse(context.Background(), "Math   and sleep at\n22:30")
	if err != nil {
		t.Fatalf("second Parse: %v", err)
	}
	if eng.calls != 1 {
		t.Fatalf("calls=%d, want cached second parse", eng.calls)
	}
	if second.SleepGoal == nil || *second.SleepGoal != *first.SleepGoal {
		t.Fatalf("cached result differs: %+v vs %+v", second, first)
	}
}

func TestIntakeParseSurvivesCacheErrors(t *testing.T) {
	eng := &fakeEngine{reply: `{"subjects":[],"deadlines":[],"sport":null,"sleep_goal":null}`}
	cache := newMemCache()
	cache.getErr = errors.New("redis down")
	cache.setErr = errors.New("redis down")

	res, err := NewIntakeService(logger.Nop(), eng, "m", cache, nil).Parse(context.Background(), "nothing")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if res.Subjects == nil || res.Deadlines == nil {
		t.Fatalf("expected empty lists, got %+v", res)
	}
}

func TestIntakeParseWithMockEngine(t *testing.T) {
	svc := NewIntakeService(logger.Nop(), mock.New(), "mock", nil, nil)
	res, err := svc.Parse(context.Background(), "Chemistry 2026-12-01; sport: Swimming")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(res.Subjects) != 1 || res.Subjects[0] != "Chemistry" || res.Deadlines[0] != "2026-12-01" {
		t.Fatalf("res=%+v", res)
	}
	if res.Sport == nil || *res.Sport != "Swimming" {
		t.Fatalf("sport=%v", res.Sport)
	}
}

func TestIntakeCacheKeyCollapsesWhitespace(t *testing.T) {
	if IntakeCacheKey("Math  and\tPhysics") != IntakeCacheKey(" Math and Physics ") {
		t.Fatal("whitespace variants should share a key")
	}
	if IntakeCacheKey("math") == IntakeCacheKey("Math") {
		t.Fatal("case should be significant")
	}
}

func TestIntakeParseRecordsMetrics(t *testing.T) {
	m := observability.NewMetrics()
	svc := NewIntakeService(logger.Nop(), &fakeEngine{reply: "nope"}, "m", nil, m)
	if _, err := svc.Parse(context.Background(), "Math"); err == nil {
		t.Fatal("expected error")
	}
	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	if !strings.Contains(buf.String(), `optima_llm_requests_total{model="m",status="malformed_upstream_response"} 1`) {
		t.Fatalf("metrics:\n%s", buf.String())
	}
}
