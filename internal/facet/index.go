// Package facet derives the selectable values of the three-level facet
// cascade (Nightlord, Shifting Earth, Spawn Point) and filters the catalog
// by committed values. Every function here is pure over its inputs.
package facet

import (
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/tatianab/pattern-viewer/internal/models"
)

// Level1Options returns the distinct non-empty nightlords in ds, sorted.
func Level1Options(ds *models.Dataset) []string {
	return distinct(ds, func(models.Record) bool { return true }, nightlordOf)
}

// Level2Options returns the distinct non-empty shifting earths among records
// with the given nightlord. It is empty when nightlord is unset.
func Level2Options(ds *models.Dataset, nightlord models.Choice) []string {
	if !nightlord.IsSet() {
		return []string{}
	}
	return distinct(ds, func(r models.Record) bool {
		return nightlord.Is(r.Nightlord)
	}, shiftingEarthOf)
}

// Level3Options returns the distinct non-empty spawn points among records
// matching both nightlord and shiftingEarth. It is empty unless both are set.
func Level3Options(ds *models.Dataset, nightlord, shiftingEarth models.Choice) []string {
	if !nightlord.IsSet() || !shiftingEarth.IsSet() {
		return []string{}
	}
	return distinct(ds, func(r models.Record) bool {
		return nightlord.Is(r.Nightlord) && shiftingEarth.Is(r.ShiftingEarth)
	}, spawnPointOf)
}

func nightlordOf(r models.Record) string     { return r.Nightlord }
func shiftingEarthOf(r models.Record) string { return r.ShiftingEarth }
func spawnPointOf(r models.Record) string    { return r.SpawnPoint }

// distinct collects field(r) for every record passing keep, dropping empty
// values and duplicates. Order is byte-wise ascending.
func distinct(ds *models.Dataset, keep func(models.Record) bool, field func(models.Record) string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for i := 0; i < ds.Len(); i++ {
		r := ds.At(i)
		if !keep(r) {
			continue
		}
		v := field(r)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// DefaultCacheSize bounds the number of memoized option lists held by an Index.
const DefaultCacheSize = 256

type optionKey struct {
	level         int
	nightlord     models.Choice
	shiftingEarth models.Choice
}

// Index memoizes option lists for a single dataset. Since the dataset never
// changes after load, the inputs alone key the cache.
type Index struct {
	ds    *models.Dataset
	cache *lru.Cache[optionKey, []string]
}

// NewIndex builds an Index over ds holding at most size option lists.
// A size <= 0 uses DefaultCacheSize.
func NewIndex(ds *models.Dataset, size int) *Index {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[optionKey, []string](size)
	if err != nil {
		// lru.New only fails for non-positive sizes.
		panic(err)
	}
	return &Index{ds: ds, cache: cache}
}

// Dataset returns the catalog the index was built over.
func (x *Index) Dataset() *models.Dataset { return x.ds }

func (x *Index) Level1() []string {
	return x.memo(optionKey{level: 1}, func() []string {
		return Level1Options(x.ds)
	})
}

func (x *Index) Level2(nightlord models.Choice) []string {
	if !nightlord.IsSet() {
		return []string{}
	}
	return x.memo(optionKey{level: 2, nightlord: nightlord}, func() []string {
		return Level2Options(x.ds, nightlord)
	})
}

func (x *Index) Level3(nightlord, shiftingEarth models.Choice) []string {
	if !nightlord.IsSet() || !shiftingEarth.IsSet() {
		return []string{}
	}
	return x.memo(optionKey{level: 3, nightlord: nightlord, shiftingEarth: shiftingEarth}, func() []string {
		return Level3Options(x.ds, nightlord, shiftingEarth)
	})
}

// memo returns a copy so callers can never alter a cached list.
func (x *Index) memo(key optionKey, compute func() []string) []string {
	if v, ok := x.cache.Get(key); ok {
		return slices.Clone(v)
	}
	v := compute()
	x.cache.Add(key, v)
	return slices.Clone(v)
}

// Contains reports whether v is one of options.
func Contains(options []string, v string) bool {
	_, found := slices.BinarySearch(options, v)
	return found
}
