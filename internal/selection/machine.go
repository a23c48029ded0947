// Package selection owns the facet selections and the open record, and
// defines the only transitions allowed to change them.
package selection

import (
	"fmt"
	"log/slog"

	"github.com/tatianab/pattern-viewer/internal/facet"
	"github.com/tatianab/pattern-viewer/internal/models"
)

// Level names a facet in cascade order.
type Level int

const (
	LevelNightlord Level = iota + 1
	LevelShiftingEarth
	LevelSpawnPoint
)

func (l Level) String() string {
	switch l {
	case LevelNightlord:
		return "nightlord"
	case LevelShiftingEarth:
		return "shifting earth"
	case LevelSpawnPoint:
		return "spawn point"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// Machine is the selection state machine. It is not safe for concurrent use;
// transitions are applied in call order by a single owner.
type Machine struct {
	index *facet.Index
	sel   models.Selection
	log   *slog.Logger
}

// New returns a Machine in the initial state over idx. A nil logger
// discards log output.
func New(idx *facet.Index, logger *slog.Logger) *Machine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Machine{index: idx, log: logger}
}

// Selection returns a copy of the current state.
func (m *Machine) Selection() models.Selection { return m.sel }

// NightlordOptions lists the values ChooseNightlord accepts.
func (m *Machine) NightlordOptions() []string {
	return m.index.Level1()
}

// ShiftingEarthOptions lists the values ChooseShiftingEarth accepts now.
func (m *Machine) ShiftingEarthOptions() []string {
	return m.index.Level2(m.sel.Nightlord)
}

// SpawnPointOptions lists the values ChooseSpawnPoint accepts now.
func (m *Machine) SpawnPointOptions() []string {
	return m.index.Level3(m.sel.Nightlord, m.sel.ShiftingEarth)
}

// Matching returns the records matching the committed facets.
func (m *Machine) Matching() []models.Record {
	return facet.MatchingRecords(m.index.Dataset(), m.sel)
}

// Displayed applies the presentation rule to the current matching set.
func (m *Machine) Displayed() []models.Record {
	return Displayed(m.Matching(), m.sel.OpenRecord)
}

// Count summarises the current matching set.
func (m *Machine) Count() Count {
	return CountOf(m.index.Dataset(), m.Matching())
}

// ChooseNightlord commits v as the nightlord and clears everything below it,
// including the open record.
func (m *Machine) ChooseNightlord(v string) error {
	if !facet.Contains(m.NightlordOptions(), v) {
		return m.reject(LevelNightlord, v, "not a known nightlord")
	}
	m.sel = models.Selection{Nightlord: models.Some(v)}
	m.log.Debug("transition", "facet", LevelNightlord.String(), "value", v)
	return nil
}

// ChooseShiftingEarth commits v under the current nightlord and clears the
// spawn point and the open record.
func (m *Machine) ChooseShiftingEarth(v string) error {
	if !m.sel.Nightlord.IsSet() {
		return m.reject(LevelShiftingEarth, v, "no nightlord chosen")
	}
	if !facet.Contains(m.ShiftingEarthOptions(), v) {
		return m.reject(LevelShiftingEarth, v, fmt.Sprintf("not available for nightlord %q", m.sel.Nightlord.Value()))
	}
	m.sel.ShiftingEarth = models.Some(v)
	m.sel.SpawnPoint = models.None
	m.sel.OpenRecord = models.None
	m.log.Debug("transition", "facet", LevelShiftingEarth.String(), "value", v)
	return nil
}

// ChooseSpawnPoint commits v under the current shifting earth. The open
// record is left as is, even if it no longer matches.
func (m *Machine) ChooseSpawnPoint(v string) error {
	if !m.sel.ShiftingEarth.IsSet() {
		return m.reject(LevelSpawnPoint, v, "no shifting earth chosen")
	}
	if !facet.Contains(m.SpawnPointOptions(), v) {
		return m.reject(LevelSpawnPoint, v, fmt.Sprintf("not available for %q / %q",
			m.sel.Nightlord.Value(), m.sel.ShiftingEarth.Value()))
	}
	m.sel.SpawnPoint = models.Some(v)
	m.log.Debug("transition", "facet", LevelSpawnPoint.String(), "value", v)
	return nil
}

// OpenRecord marks the matching record id as open for detail view.
// Opening the record that is already open changes nothing.
func (m *Machine) OpenRecord(id string) error {
	if m.sel.OpenRecord.Is(id) {
		return nil
	}
	for _, r := range m.Matching() {
		if r.ID == id {
			m.sel.OpenRecord = models.Some(id)
			m.log.Debug("transition", "open", id)
			return nil
		}
	}
	m.log.Warn("rejected open", "id", id)
	return fmt.Errorf("open %q: %w", id, ErrUnknownRecord)
}

// Reset returns the machine to its initial state.
func (m *Machine) Reset() {
	m.sel = models.Selection{}
	m.log.Debug("transition", "reset", true)
}

func (m *Machine) reject(level Level, v, reason string) error {
	m.log.Warn("rejected transition", "facet", level.String(), "value", v, "reason", reason)
	return &TransitionError{Level: level, Value: v, Reason: reason}
}
