package pagination

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/michaelvu812/mvpaginator/internal/record"
	"github.com/michaelvu812/mvpaginator/pkg/paginator/store"
)

// SortRecords returns a copy of records ordered by the dotted field path.
// Numbers compare numerically, everything else by its string form; records
// missing the field sort last in either order.
func SortRecords(records []record.Record, field, order string) []record.Record {
	sorted := make([]record.Record, len(records))
	copy(sorted, records)

	sort.SliceStable(sorted, func(i, j int) bool {
		vi, okI := store.MapField(sorted[i], field)
		vj, okJ := store.MapField(sorted[j], field)
		if !okI || !okJ {
			return okI && !okJ
		}
		c := compareValues(vi, vj)
		if order == SortOrderDesc {
			return c > 0
		}
		return c < 0
	})

	return sorted
}

func compareValues(a, b any) int {
	if fa, ok := toFloat(a); ok {
		if fb, okB := toFloat(b); okB {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			default:
				return 0
			}
		}
	}
	sa, sb := fmt.Sprint(a), fmt.Sprint(b)
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	default:
		return 0
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
