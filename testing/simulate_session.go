package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"

	"github.com/tatianab/pattern-viewer/internal/config"
	"github.com/tatianab/pattern-viewer/internal/facet"
	"github.com/tatianab/pattern-viewer/internal/models"
	"github.com/tatianab/pattern-viewer/internal/selection"
)

const maxSteps = 40

// Walks random transitions over a real catalog and checks the selection
// invariants after every step.
func main() {
	seed := flag.Uint64("seed", 1, "random seed")
	steps := flag.Int("steps", maxSteps, "number of transitions to apply")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ds, err := models.LoadDataset(cfg.DatasetPath)
	if err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}
	fmt.Printf("Loaded %d patterns from %s\n\n", ds.Len(), cfg.DatasetPath)

	rng := rand.New(rand.NewPCG(*seed, *seed))
	m := selection.New(facet.NewIndex(ds, 0), nil)

	for step := 1; step <= *steps; step++ {
		action, err := randomTransition(rng, m)
		fmt.Printf("--- Step %d: %s\n", step, action)
		switch {
		case errors.Is(err, selection.ErrInvalidTransition), errors.Is(err, selection.ErrUnknownRecord):
			fmt.Printf("    rejected: %v\n", err)
		case err != nil:
			log.Fatalf("unexpected error: %v", err)
		}

		sel := m.Selection()
		if !sel.Consistent() {
			log.Fatalf("inconsistent selection after step %d: %+v", step, sel)
		}
		fmt.Printf("    nightlord=%v earth=%v spawn=%v open=%v matching=%s displayed=%d\n",
			sel.Nightlord, sel.ShiftingEarth, sel.SpawnPoint, sel.OpenRecord,
			m.Count(), len(m.Displayed()))
	}

	m.Reset()
	if m.Selection() != (models.Selection{}) {
		log.Fatalf("reset did not return to the initial state: %+v", m.Selection())
	}
	fmt.Println("\nAll invariants held.")
}

func randomTransition(rng *rand.Rand, m *selection.Machine) (string, error) {
	pick := func(options []string) string {
		// Occasionally try a value outside the options to exercise rejection.
		if len(options) == 0 || rng.IntN(5) == 0 {
			return "not-an-option"
		}
		return options[rng.IntN(len(options))]
	}

	switch rng.IntN(9) {
	case 0, 1:
		v := pick(m.NightlordOptions())
		return "choose nightlord " + v, m.ChooseNightlord(v)
	case 2, 3:
		v := pick(m.ShiftingEarthOptions())
		return "choose shifting earth " + v, m.ChooseShiftingEarth(v)
	case 4, 5:
		v := pick(m.SpawnPointOptions())
		return "choose spawn point " + v, m.ChooseSpawnPoint(v)
	case 6, 7:
		var ids []string
		for _, r := range m.Matching() {
			ids = append(ids, r.ID)
		}
		id := pick(ids)
		return "open " + id, m.OpenRecord(id)
	default:
		m.Reset()
		return "reset", nil
	}
}
