package selection

import (
	"strconv"

	"github.com/tatianab/pattern-viewer/internal/models"
)

// Displayed returns the records to show. With nothing open every matching
// record is shown; otherwise only the open record, and nothing at all when
// the open record has dropped out of the matching set.
func Displayed(matching []models.Record, open models.Choice) []models.Record {
	id, ok := open.Get()
	if !ok {
		return matching
	}
	for _, r := range matching {
		if r.ID == id {
			return []models.Record{r}
		}
	}
	return []models.Record{}
}

// Count reports the size of a result set. Unfiltered is true when the
// result is the whole catalog.
type Count struct {
	Unfiltered bool
	N          int
}

// CountOf compares matching against the full catalog.
func CountOf(ds *models.Dataset, matching []models.Record) Count {
	return Count{
		Unfiltered: len(matching) == ds.Len(),
		N:          len(matching),
	}
}

func (c Count) String() string {
	if c.Unfiltered {
		return "no filter"
	}
	return strconv.Itoa(c.N)
}
