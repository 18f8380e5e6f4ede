package planner

import (
	"bytes"
	"encoding/json"
	"time"
)

const (
	DateLayout = "2006-01-02"

	SportKey = "sport"
	SleepKey = "sleep"
	MetaKey  = "_meta"

	FreeLabel    = "Free / buffer"
	NoSportNote  = "No sport scheduled"
	NoSleepNote  = "Set a sleep goal (e.g. 22:30)"
	SleepPrefix  = "Target sleep: "
	labelDivider = " — "

	planNote = "Subjects with nearer deadlines get more slots; each assignment lowers a subject's priority so others rotate in."
)

// Slot is a fixed named window within a day.
type Slot struct {
	Name      string `json:"name"`
	TimeRange string `json:"time_range"`
}

var slotDefinition = []Slot{
	{Name: "morning", TimeRange: "08:00-10:00"},
	{Name: "midday", TimeRange: "10:30-12:00"},
	{Name: "afternoon", TimeRange: "15:00-17:00"},
}

// DefaultSlots returns a copy of the daily slot layout, in day order.
func DefaultSlots() []Slot {
	return append([]Slot(nil), slotDefinition...)
}

type SlotAssignment struct {
	Slot Slot
	// Subject is empty when the slot was left free.
	Subject string
}

func (a SlotAssignment) Label() string {
	subject := a.Subject
	if subject == "" {
		subject = FreeLabel
	}
	return a.Slot.TimeRange + labelDivider + subject
}

type Day struct {
	Date  time.Time
	Slots []SlotAssignment
	Sport string
	Sleep string
}

func (d Day) Key() string { return d.Date.Format(DateLayout) }

// Assignment looks up a slot by name.
func (d Day) Assignment(slotName string) (SlotAssignment, bool) {
	for _, a := range d.Slots {
		if a.Slot.Name == slotName {
			return a, true
		}
	}
	return SlotAssignment{}, false
}

// MarshalJSON writes slot labels in slot order, followed by the sport and sleep notes.
func (d Day) MarshalJSON() ([]byte, error) {
	obj := orderedObject{}
	for _, a := range d.Slots {
		obj.add(a.Slot.Name, a.Label())
	}
	obj.add(SportKey, d.Sport)
	obj.add(SleepKey, d.Sleep)
	return obj.marshal()
}

type Meta struct {
	GeneratedAt  time.Time `json:"generated_at"`
	SubjectCount int       `json:"subject_count"`
	Note         string    `json:"note"`
}

// Plan covers today through today+6, in day order.
type Plan struct {
	Days []Day
	Meta Meta
}

func (p *Plan) Dates() []string {
	out := make([]string, 0, len(p.Days))
	for _, d := range p.Days {
		out = append(out, d.Key())
	}
	return out
}

// MarshalJSON keys days by ISO date in day order and appends the metadata entry last.
func (p *Plan) MarshalJSON() ([]byte, error) {
	obj := orderedObject{}
	for _, d := range p.Days {
		obj.add(d.Key(), d)
	}
	obj.add(MetaKey, p.Meta)
	return obj.marshal()
}

type orderedObject struct {
	keys   []string
	values []any
}

func (o *orderedObject) add(key string, value any) {
	o.keys = append(o.keys, key)
	o.values = append(o.values, value)
}

func (o *orderedObject) marshal() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(o.values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
