package models

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
)

// Record is one catalog entry: a single Nightreign map pattern.
type Record struct {
	ID             string `json:"pattern_id" yaml:"pattern_id"`
	Nightlord      string `json:"nightlord" yaml:"nightlord"`
	ShiftingEarth  string `json:"shifting_earth" yaml:"shifting_earth"`
	SpawnPoint     string `json:"spawn_point" yaml:"spawn_point"`
	SpecialEvent   string `json:"special_event,omitempty" yaml:"special_event,omitempty"`
	Castle         string `json:"castle" yaml:"castle"`
	Night1Boss     string `json:"night_1_boss" yaml:"night_1_boss"`
	Night2Boss     string `json:"night_2_boss" yaml:"night_2_boss"`
	ExtraNightBoss string `json:"extra_night_boss,omitempty" yaml:"extra_night_boss,omitempty"`
	Night1Circle   string `json:"night_1_circle" yaml:"night_1_circle"`
	Night2Circle   string `json:"night_2_circle" yaml:"night_2_circle"`
}

// patternID accepts pattern_id written either as a JSON string or a number.
type patternID string

func (p *patternID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = patternID(s)
		return nil
	}
	if _, err := strconv.ParseFloat(string(data), 64); err != nil {
		return fmt.Errorf("pattern_id %s is neither a string nor a number", data)
	}
	*p = patternID(data)
	return nil
}

type recordJSON struct {
	ID             patternID `json:"pattern_id"`
	Nightlord      string    `json:"nightlord"`
	ShiftingEarth  string    `json:"shifting_earth"`
	SpawnPoint     string    `json:"spawn_point"`
	SpecialEvent   string    `json:"special_event"`
	Castle         string    `json:"castle"`
	Night1Boss     string    `json:"night_1_boss"`
	Night2Boss     string    `json:"night_2_boss"`
	ExtraNightBoss string    `json:"extra_night_boss"`
	Night1Circle   string    `json:"night_1_circle"`
	Night2Circle   string    `json:"night_2_circle"`
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var aux recordJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = Record{
		ID:             string(aux.ID),
		Nightlord:      aux.Nightlord,
		ShiftingEarth:  aux.ShiftingEarth,
		SpawnPoint:     aux.SpawnPoint,
		SpecialEvent:   aux.SpecialEvent,
		Castle:         aux.Castle,
		Night1Boss:     aux.Night1Boss,
		Night2Boss:     aux.Night2Boss,
		ExtraNightBoss: aux.ExtraNightBoss,
		Night1Circle:   aux.Night1Circle,
		Night2Circle:   aux.Night2Circle,
	}
	return nil
}

// Choice is a facet value or record id that is either committed or unset.
// The zero value is unset; an empty string can still be a committed value.
type Choice struct {
	value string
	set   bool
}

// None is the unset Choice.
var None = Choice{}

// Some returns a committed Choice holding v.
func Some(v string) Choice {
	return Choice{value: v, set: true}
}

func (c Choice) IsSet() bool { return c.set }

// Get returns the committed value and whether one exists.
func (c Choice) Get() (string, bool) { return c.value, c.set }

// Value returns the committed value, or "" when unset.
func (c Choice) Value() string { return c.value }

// Is reports whether c is committed to exactly v.
func (c Choice) Is(v string) bool { return c.set && c.value == v }

func (c Choice) String() string {
	if !c.set {
		return "<unset>"
	}
	return strconv.Quote(c.value)
}

// Selection is the state owned by the selection machine.
type Selection struct {
	Nightlord     Choice
	ShiftingEarth Choice
	SpawnPoint    Choice
	OpenRecord    Choice
}

// Level is the number of committed facets, 0 through 3.
func (s Selection) Level() int {
	switch {
	case s.SpawnPoint.IsSet():
		return 3
	case s.ShiftingEarth.IsSet():
		return 2
	case s.Nightlord.IsSet():
		return 1
	}
	return 0
}

// Consistent reports whether the cascade invariant holds: no facet is
// committed while the facet above it is unset.
func (s Selection) Consistent() bool {
	if s.ShiftingEarth.IsSet() && !s.Nightlord.IsSet() {
		return false
	}
	if s.SpawnPoint.IsSet() && !s.ShiftingEarth.IsSet() {
		return false
	}
	return true
}
