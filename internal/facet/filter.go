package facet

import "github.com/tatianab/pattern-viewer/internal/models"

// Matches reports whether r satisfies every committed facet of sel.
// The open record plays no part in filtering.
func Matches(r models.Record, sel models.Selection) bool {
	if sel.Nightlord.IsSet() && !sel.Nightlord.Is(r.Nightlord) {
		return false
	}
	if sel.ShiftingEarth.IsSet() && !sel.ShiftingEarth.Is(r.ShiftingEarth) {
		return false
	}
	if sel.SpawnPoint.IsSet() && !sel.SpawnPoint.Is(r.SpawnPoint) {
		return false
	}
	return true
}

// MatchingRecords returns the records of ds matching sel in catalog order.
// With no facet committed the whole catalog is returned.
func MatchingRecords(ds *models.Dataset, sel models.Selection) []models.Record {
	out := make([]models.Record, 0, ds.Len())
	for i := 0; i < ds.Len(); i++ {
		if r := ds.At(i); Matches(r, sel) {
			out = append(out, r)
		}
	}
	return out
}
