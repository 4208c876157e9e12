// Package stats ranks tallied counts and writes the top-ten reports.
package stats

import (
	"sort"

	"github.com/verte-zerg/toptens/internal/model"
)

// Rank orders counts by descending count, breaking ties by ascending key.
func Rank(counts map[string]int) []model.Count {
	items := make([]model.Count, 0, len(counts))
	for key, count := range counts {
		items = append(items, model.Count{Key: key, Count: count})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count == items[j].Count {
			return items[i].Key < items[j].Key
		}
		return items[i].Count > items[j].Count
	})
	return items
}

// Top returns at most n leading entries of a ranked list.
func Top(ranked []model.Count, n int) []model.Count {
	if n <= 0 {
		return nil
	}
	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}
