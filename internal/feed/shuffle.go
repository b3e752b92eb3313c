package feed

import (
	"math/rand/v2"
	"slices"
	"time"
)

// SplitByGate partitions items into the ones at or after gate (recent) and
// the ones before it (earlier), keeping relative order in both.
func SplitByGate[T any](items []T, gate time.Time, timeOf func(T) time.Time) (recent, earlier []T) {
	for _, item := range items {
		if timeOf(item).Before(gate) {
			earlier = append(earlier, item)
		} else {
			recent = append(recent, item)
		}
	}
	return recent, earlier
}

// Shuffle returns a shuffled copy of items
func Shuffle[T any](items []T, rnd *rand.Rand) []T {
	out := slices.Clone(items)
	rnd.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// OrderBy replays a previous order: items present in prev are sorted by
// their old index, items never seen before come first in their given order.
func OrderBy[T any](items []T, prev map[string]int, key func(T) string) []T {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b T) int {
		ia, okA := prev[key(a)]
		ib, okB := prev[key(b)]
		switch {
		case !okA && !okB:
			return 0
		case !okA:
			return -1
		case !okB:
			return 1
		default:
			return ia - ib
		}
	})
	return out
}

// IndexMap records the position of every item by key
func IndexMap[T any](items []T, key func(T) string) map[string]int {
	m := make(map[string]int, len(items))
	for i, item := range items {
		k := key(item)
		if _, ok := m[k]; !ok {
			m[k] = i
		}
	}
	return m
}

// shuffleOrReplay shuffles items, or replays prev when one is given
func shuffleOrReplay[T any](items []T, prev map[string]int, key func(T) string, rnd *rand.Rand) []T {
	if prev != nil {
		return OrderBy(items, prev, key)
	}
	return Shuffle(items, rnd)
}
