package metrics

import "sort"

// StatusCount is the number of responses seen with one status code.
type StatusCount struct {
	Code  int
	Count int
}

// sortStatusCounts flattens a code->count map into rows sorted by descending
// count, then by code for stability.
func sortStatusCounts(counts map[int]int) []StatusCount {
	if len(counts) == 0 {
		return nil
	}
	rows := make([]StatusCount, 0, len(counts))
	for code, count := range counts {
		rows = append(rows, StatusCount{Code: code, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count == rows[j].Count {
			return rows[i].Code < rows[j].Code
		}
		return rows[i].Count > rows[j].Count
	})
	return rows
}
