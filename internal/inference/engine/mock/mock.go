package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/yungbote/optima-backend/internal/inference/engine"
)

var (
	isoDateRe   = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	clockTimeRe = regexp.MustCompile(`\b([01]?\d|2[0-3]):[0-5]\d\b`)
)

// Engine answers intake prompts without a model. The last user message is
// split on commas, semicolons and newlines: a "sport:" prefix sets sport, a
// segment mentioning sleep sets sleep_goal from its HH:MM, anything else is a
// subject with an optional YYYY-MM-DD deadline.
type Engine struct{}

func New() *Engine {
	return &Engine{}
}

func (e *Engine) GenerateText(ctx context.Context, model string, messages []engine.Message, opts engine.GenerateOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var user string
	for i := len(messages) - 1; i >= 0; i-- {
		if strings.EqualFold(messages[i].Role, "user") {
			user = messages[i].Content
			break
		}
	}

	if opts.JSONSchema == nil {
		if strings.TrimSpace(user) == "" {
			return "mock: ok", nil
		}
		return fmt.Sprintf("mock: %s", user), nil
	}

	out := struct {
		Subjects  []string `json:"subjects"`
		Deadlines []string `json:"deadlines"`
		Sport     *string  `json:"sport"`
		SleepGoal *string  `json:"sleep_goal"`
	}{Subjects: []string{}, Deadlines: []string{}}

	for _, seg := range strings.FieldsFunc(user, func(r rune) bool { return r == ',' || r == ';' || r == '\n' }) {
		seg = strings.TrimSpace(seg)
		lower := strings.ToLower(seg)
		switch {
		case seg == "":
		case strings.HasPrefix(lower, "sport:"):
			sport := strings.TrimSpace(seg[len("sport:"):])
			out.Sport = &sport
		case strings.Contains(lower, "sleep"):
			if m := clockTimeRe.FindString(seg); m != "" {
				goal := m
				if len(goal) == 4 {
					goal = "0" + goal
				}
				out.SleepGoal = &goal
			}
		default:
			deadline := isoDateRe.FindString(seg)
			name := strings.Join(strings.Fields(strings.Replace(seg, deadline, "", 1)), " ")
			if name == "" {
				continue
			}
			out.Subjects = append(out.Subjects, name)
			out.Deadlines = append(out.Deadlines, deadline)
		}
	}

	b, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
