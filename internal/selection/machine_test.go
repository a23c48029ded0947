package selection

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/tatianab/pattern-viewer/internal/facet"
	"github.com/tatianab/pattern-viewer/internal/models"
	"pgregory.net/rapid"
)

func newMachine(t testing.TB, records ...models.Record) *Machine {
	t.Helper()
	ds, err := models.NewDataset(records)
	if err != nil {
		t.Fatalf("Failed to build dataset: %v", err)
	}
	return New(facet.NewIndex(ds, 0), nil)
}

func scenarioMachine(t testing.TB) *Machine {
	return newMachine(t,
		models.Record{ID: "A", Nightlord: "Gaping Jaw", ShiftingEarth: "Rotted Woods", SpawnPoint: "North"},
		models.Record{ID: "B", Nightlord: "Gaping Jaw", ShiftingEarth: "Rotted Woods", SpawnPoint: "South"},
	)
}

func ids(records []models.Record) string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return strings.Join(out, ",")
}

func TestInitialState(t *testing.T) {
	m := scenarioMachine(t)
	if m.Selection() != (models.Selection{}) {
		t.Errorf("Expected empty initial selection, got %+v", m.Selection())
	}
	if got := m.Count(); !got.Unfiltered || got.String() != "no filter" {
		t.Errorf("Expected unfiltered count, got %+v", got)
	}
	if got := ids(m.Displayed()); got != "A,B" {
		t.Errorf("Expected all records displayed, got %s", got)
	}
}

func TestScenarioNarrowing(t *testing.T) {
	m := scenarioMachine(t)

	if err := m.ChooseNightlord("Gaping Jaw"); err != nil {
		t.Fatalf("ChooseNightlord failed: %v", err)
	}
	if err := m.ChooseShiftingEarth("Rotted Woods"); err != nil {
		t.Fatalf("ChooseShiftingEarth failed: %v", err)
	}
	if got := ids(m.Matching()); got != "A,B" {
		t.Errorf("Expected A,B, got %s", got)
	}
	if got := strings.Join(m.SpawnPointOptions(), ","); got != "North,South" {
		t.Errorf("Expected North,South, got %s", got)
	}

	if err := m.ChooseSpawnPoint("North"); err != nil {
		t.Fatalf("ChooseSpawnPoint failed: %v", err)
	}
	if got := ids(m.Matching()); got != "A" {
		t.Errorf("Expected A, got %s", got)
	}
	if got := m.Count(); got.Unfiltered || got.N != 1 || got.String() != "1" {
		t.Errorf("Expected filtered count of 1, got %+v", got)
	}
}

func TestShiftingEarthBeforeNightlordRejected(t *testing.T) {
	m := scenarioMachine(t)

	err := m.ChooseShiftingEarth("Rotted Woods")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Expected ErrInvalidTransition, got %v", err)
	}
	var te *TransitionError
	if !errors.As(err, &te) || te.Level != LevelShiftingEarth || te.Value != "Rotted Woods" {
		t.Errorf("Expected TransitionError for shifting earth, got %#v", err)
	}
	if m.Selection() != (models.Selection{}) {
		t.Errorf("Expected state unchanged, got %+v", m.Selection())
	}
}

func TestOpenRecordPassThrough(t *testing.T) {
	m := scenarioMachine(t)
	mustChoose(t, m, "Gaping Jaw", "Rotted Woods")

	if err := m.OpenRecord("A"); err != nil {
		t.Fatalf("OpenRecord failed: %v", err)
	}
	if got := ids(m.Displayed()); got != "A" {
		t.Errorf("Expected only A displayed, got %s", got)
	}

	if err := m.ChooseSpawnPoint("South"); err != nil {
		t.Fatalf("ChooseSpawnPoint failed: %v", err)
	}
	if !m.Selection().OpenRecord.Is("A") {
		t.Errorf("Expected A to stay open, got %v", m.Selection().OpenRecord)
	}
	if got := m.Displayed(); len(got) != 0 {
		t.Errorf("Expected nothing displayed, got %s", ids(got))
	}

	// Restoring a selection that matches A shows it again.
	if err := m.ChooseSpawnPoint("North"); err != nil {
		t.Fatalf("ChooseSpawnPoint failed: %v", err)
	}
	if got := ids(m.Displayed()); got != "A" {
		t.Errorf("Expected A displayed again, got %s", got)
	}
}

func TestOpenRecordIdempotent(t *testing.T) {
	m := scenarioMachine(t)
	if err := m.OpenRecord("B"); err != nil {
		t.Fatalf("OpenRecord failed: %v", err)
	}
	before := m.Selection()
	if err := m.OpenRecord("B"); err != nil {
		t.Fatalf("Second OpenRecord failed: %v", err)
	}
	if m.Selection() != before {
		t.Errorf("Expected no state change, got %+v", m.Selection())
	}
}

func TestOpenRecordUnknown(t *testing.T) {
	m := scenarioMachine(t)
	mustChoose(t, m, "Gaping Jaw", "Rotted Woods", "North")

	for _, id := range []string{"B", "Z", ""} {
		err := m.OpenRecord(id)
		if !errors.Is(err, ErrUnknownRecord) {
			t.Errorf("OpenRecord(%q): expected ErrUnknownRecord, got %v", id, err)
		}
	}
	if m.Selection().OpenRecord.IsSet() {
		t.Errorf("Expected nothing open, got %v", m.Selection().OpenRecord)
	}
}

func TestEmptyRecordIDIsOpenable(t *testing.T) {
	m := newMachine(t, models.Record{ID: "", Nightlord: "Adel"})
	if err := m.OpenRecord(""); err != nil {
		t.Fatalf("OpenRecord failed: %v", err)
	}
	if !m.Selection().OpenRecord.IsSet() {
		t.Error("Expected empty id to be recorded as open")
	}
	if got := m.Displayed(); len(got) != 1 {
		t.Errorf("Expected one displayed record, got %d", len(got))
	}
}

func TestTransitionResets(t *testing.T) {
	m := newMachine(t,
		models.Record{ID: "1", Nightlord: "Adel", ShiftingEarth: "Crater", SpawnPoint: "East"},
		models.Record{ID: "2", Nightlord: "Adel", ShiftingEarth: "Noklateo", SpawnPoint: "West"},
		models.Record{ID: "3", Nightlord: "Gladius", ShiftingEarth: "Crater", SpawnPoint: "East"},
	)

	mustChoose(t, m, "Adel", "Crater", "East")
	if err := m.OpenRecord("1"); err != nil {
		t.Fatal(err)
	}

	if err := m.ChooseShiftingEarth("Noklateo"); err != nil {
		t.Fatal(err)
	}
	sel := m.Selection()
	if sel.SpawnPoint.IsSet() || sel.OpenRecord.IsSet() {
		t.Errorf("Expected spawn point and open record cleared, got %+v", sel)
	}

	mustChoose(t, m, "Adel", "Crater", "East")
	if err := m.OpenRecord("1"); err != nil {
		t.Fatal(err)
	}
	if err := m.ChooseNightlord("Gladius"); err != nil {
		t.Fatal(err)
	}
	if got := m.Selection(); got != (models.Selection{Nightlord: models.Some("Gladius")}) {
		t.Errorf("Expected only nightlord set, got %+v", got)
	}
}

func TestInvalidValuesRejected(t *testing.T) {
	m := newMachine(t,
		models.Record{ID: "1", Nightlord: "Adel", ShiftingEarth: "Crater", SpawnPoint: "East"},
		models.Record{ID: "2", Nightlord: "Gladius", ShiftingEarth: "Noklateo", SpawnPoint: "West"},
		models.Record{ID: "3", Nightlord: "", ShiftingEarth: "", SpawnPoint: ""},
	)

	tests := []struct {
		name string
		do   func() error
	}{
		{"unknown nightlord", func() error { return m.ChooseNightlord("Maris") }},
		{"empty nightlord", func() error { return m.ChooseNightlord("") }},
		{"earth of another nightlord", func() error { return m.ChooseShiftingEarth("Noklateo") }},
		{"spawn before earth", func() error { return m.ChooseSpawnPoint("East") }},
	}

	if err := m.ChooseNightlord("Adel"); err != nil {
		t.Fatal(err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := m.Selection()
			if err := tt.do(); !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("Expected ErrInvalidTransition, got %v", err)
			}
			if m.Selection() != before {
				t.Errorf("Expected state unchanged, got %+v", m.Selection())
			}
		})
	}

	if err := m.ChooseShiftingEarth("Crater"); err != nil {
		t.Fatal(err)
	}
	if err := m.ChooseSpawnPoint("West"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected spawn point of another earth to be rejected, got %v", err)
	}
}

func TestResetIdempotent(t *testing.T) {
	m := scenarioMachine(t)
	mustChoose(t, m, "Gaping Jaw", "Rotted Woods", "North")
	if err := m.OpenRecord("A"); err != nil {
		t.Fatal(err)
	}

	m.Reset()
	once := m.Selection()
	m.Reset()
	if m.Selection() != once || once != (models.Selection{}) {
		t.Errorf("Expected reset to return to the initial state, got %+v", m.Selection())
	}
}

func TestTransitionsAreLogged(t *testing.T) {
	var buf bytes.Buffer
	ds, err := models.NewDataset([]models.Record{{ID: "1", Nightlord: "Adel"}})
	if err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	m := New(facet.NewIndex(ds, 0), logger)

	_ = m.ChooseNightlord("Adel")
	_ = m.ChooseSpawnPoint("East")

	out := buf.String()
	if !strings.Contains(out, "msg=transition") {
		t.Errorf("Expected transition to be logged, got %q", out)
	}
	if !strings.Contains(out, "rejected transition") {
		t.Errorf("Expected rejection to be logged, got %q", out)
	}
}

func TestLevelString(t *testing.T) {
	if LevelSpawnPoint.String() != "spawn point" {
		t.Errorf("Expected \"spawn point\", got %q", LevelSpawnPoint.String())
	}
	if Level(9).String() != "level(9)" {
		t.Errorf("Expected fallback name, got %q", Level(9).String())
	}
}

func mustChoose(t testing.TB, m *Machine, values ...string) {
	t.Helper()
	steps := []func(string) error{m.ChooseNightlord, m.ChooseShiftingEarth, m.ChooseSpawnPoint}
	for i, v := range values {
		if err := steps[i](v); err != nil {
			t.Fatalf("choose %q: %v", v, err)
		}
	}
}

// Property tests over random transition sequences.

var (
	nightlords = []string{"", "Adel", "Gladius", "Maris"}
	earths     = []string{"", "Crater", "Mountaintop", "Noklateo"}
	spawns     = []string{"", "East", "North", "West"}
)

func genMachine(t *rapid.T) *Machine {
	n := rapid.IntRange(0, 25).Draw(t, "n")
	records := make([]models.Record, n)
	for i := range records {
		records[i] = models.Record{
			ID:            fmt.Sprintf("p%d", i),
			Nightlord:     rapid.SampledFrom(nightlords).Draw(t, "nightlord"),
			ShiftingEarth: rapid.SampledFrom(earths).Draw(t, "earth"),
			SpawnPoint:    rapid.SampledFrom(spawns).Draw(t, "spawn"),
		}
	}
	ds, err := models.NewDataset(records)
	if err != nil {
		t.Fatalf("Failed to build dataset: %v", err)
	}
	return New(facet.NewIndex(ds, 0), nil)
}

// pick draws from the valid options most of the time and from the raw
// value pool otherwise, so both accepted and rejected inputs are exercised.
func pick(t *rapid.T, valid, pool []string, label string) string {
	if len(valid) > 0 && rapid.IntRange(0, 3).Draw(t, label+"_valid") > 0 {
		return rapid.SampledFrom(valid).Draw(t, label)
	}
	return rapid.SampledFrom(pool).Draw(t, label)
}

func checkTransition(t *rapid.T, m *Machine, before models.Selection, err error) {
	if err != nil && m.Selection() != before {
		t.Fatalf("rejected transition changed state: %+v -> %+v (%v)", before, m.Selection(), err)
	}
	if err != nil && !errors.Is(err, ErrInvalidTransition) && !errors.Is(err, ErrUnknownRecord) {
		t.Fatalf("unexpected error type: %v", err)
	}
}

func TestMachineInvariantsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := genMachine(t)

		t.Repeat(map[string]func(*rapid.T){
			"nightlord": func(t *rapid.T) {
				before := m.Selection()
				v := pick(t, m.NightlordOptions(), nightlords, "nightlord")
				err := m.ChooseNightlord(v)
				checkTransition(t, m, before, err)
				if err == nil {
					sel := m.Selection()
					if sel.ShiftingEarth.IsSet() || sel.SpawnPoint.IsSet() || sel.OpenRecord.IsSet() {
						t.Fatalf("ChooseNightlord left lower levels set: %+v", sel)
					}
				}
			},
			"earth": func(t *rapid.T) {
				before := m.Selection()
				v := pick(t, m.ShiftingEarthOptions(), earths, "earth")
				err := m.ChooseShiftingEarth(v)
				checkTransition(t, m, before, err)
				if err == nil && (m.Selection().SpawnPoint.IsSet() || m.Selection().OpenRecord.IsSet()) {
					t.Fatalf("ChooseShiftingEarth left lower levels set: %+v", m.Selection())
				}
			},
			"spawn": func(t *rapid.T) {
				before := m.Selection()
				v := pick(t, m.SpawnPointOptions(), spawns, "spawn")
				err := m.ChooseSpawnPoint(v)
				checkTransition(t, m, before, err)
				if err == nil && m.Selection().OpenRecord != before.OpenRecord {
					t.Fatalf("ChooseSpawnPoint changed the open record: %+v -> %+v", before, m.Selection())
				}
			},
			"open": func(t *rapid.T) {
				before := m.Selection()
				var candidates []string
				for _, r := range m.Matching() {
					candidates = append(candidates, r.ID)
				}
				id := pick(t, candidates, []string{"p0", "p1", "p99"}, "id")
				checkTransition(t, m, before, m.OpenRecord(id))
			},
			"reset": func(t *rapid.T) {
				m.Reset()
				if m.Selection() != (models.Selection{}) {
					t.Fatalf("Reset left state %+v", m.Selection())
				}
			},
			"": func(t *rapid.T) {
				sel := m.Selection()
				if !sel.Consistent() {
					t.Fatalf("inconsistent state reached: %+v", sel)
				}
				displayed := m.Displayed()
				if sel.OpenRecord.IsSet() && len(displayed) > 1 {
					t.Fatalf("detail view shows %d records", len(displayed))
				}
			},
		})

		m.Reset()
		if m.Selection() != (models.Selection{}) {
			t.Fatalf("final Reset left state %+v", m.Selection())
		}
	})
}
