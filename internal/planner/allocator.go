package planner

import (
	"strings"
	"time"

	"github.com/yungbote/optima-backend/internal/normalization"
)

const (
	PlanDays           = 7
	DecayFactor        = 0.6
	NoDeadlinePriority = 0.1
)

type Input struct {
	Subjects []string
	// Deadlines is parallel to Subjects and may be shorter; nil entries mean no deadline.
	Deadlines []*string
	Sport     string
	SleepGoal string
}

// SubjectTask is the per-run scheduling state of one subject.
type SubjectTask struct {
	Name     string
	Deadline *time.Time
	Priority float64
	Assigned int
}

// DeadlinePriority is 1/(days left + 1); deadlines today or already past score 1.
func DeadlinePriority(deadline *time.Time, today time.Time) float64 {
	if deadline == nil {
		return NoDeadlinePriority
	}
	return 1 / float64(daysBetween(today, *deadline)+1)
}

// NewTasks builds one task per subject, in input order.
func NewTasks(subjects []string, deadlines []*time.Time, today time.Time) []*SubjectTask {
	tasks := make([]*SubjectTask, len(subjects))
	for i, name := range subjects {
		var dl *time.Time
		if i < len(deadlines) {
			dl = deadlines[i]
		}
		tasks[i] = &SubjectTask{
			Name:     name,
			Deadline: dl,
			Priority: DeadlinePriority(dl, today),
		}
	}
	return tasks
}

// Allocate fills every slot of the 7 days starting at now's calendar date.
// It is a pure function of its arguments; now is captured once so every
// relative date in the run agrees.
func Allocate(in Input, now time.Time) *Plan {
	today := normalization.Today(now)
	deadlines := normalization.NormalizeDeadlines(in.Deadlines, len(in.Subjects), today)
	tasks := NewTasks(in.Subjects, deadlines, today)

	sport := strings.TrimSpace(in.Sport)
	if sport == "" {
		sport = NoSportNote
	}
	sleep := NoSleepNote
	if goal := strings.TrimSpace(in.SleepGoal); goal != "" {
		sleep = SleepPrefix + goal
	}

	plan := &Plan{Days: make([]Day, 0, PlanDays)}
	for offset := 0; offset < PlanDays; offset++ {
		day := Day{
			Date:  today.AddDate(0, 0, offset),
			Slots: make([]SlotAssignment, 0, len(slotDefinition)),
			Sport: sport,
			Sleep: sleep,
		}
		for _, slot := range slotDefinition {
			a := SlotAssignment{Slot: slot}
			if t := nextTask(tasks); t != nil {
				t.Assigned++
				a.Subject = t.Name
				t.Priority *= DecayFactor
			}
			day.Slots = append(day.Slots, a)
		}
		plan.Days = append(plan.Days, day)
	}

	plan.Meta = Meta{
		GeneratedAt:  now,
		SubjectCount: len(in.Subjects),
		Note:         planNote,
	}
	return plan
}

// nextTask picks the highest priority, then the fewest assignments, then the
// earliest input position.
func nextTask(tasks []*SubjectTask) *SubjectTask {
	var best *SubjectTask
	for _, t := range tasks {
		switch {
		case best == nil,
			t.Priority > best.Priority,
			t.Priority == best.Priority && t.Assigned < best.Assigned:
			best = t
		}
	}
	return best
}

// daysBetween counts whole calendar days from a to b, floored at zero.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	days := int((to.Unix() - from.Unix()) / 86400)
	if days < 0 {
		return 0
	}
	return days
}
