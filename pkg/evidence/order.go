package evidence

import (
	"sort"
	"time"
)

// OrderRecords reconstructs canonical chain order from an unordered record
// set. It walks previous-hash pointers forward from the genesis record
// (empty PreviousHash), using a successor index keyed by PreviousHash so the
// walk is O(n). Records the walk cannot reach — broken links, branches,
// duplicates — are appended afterward in ascending timestamp order. When no
// genesis exists at all, the whole set falls back to timestamp order.
// Caller-provided slice order is never trusted and never mutated.
func OrderRecords(records []Record) []Record {
	if len(records) <= 1 {
		out := make([]Record, len(records))
		copy(out, records)
		return out
	}

	genesis := -1
	successors := make(map[string]int, len(records)) // PreviousHash -> input index
	for i, r := range records {
		if r.PreviousHash == "" {
			if genesis < 0 {
				genesis = i
			}
			continue
		}
		if _, dup := successors[r.PreviousHash]; !dup {
			successors[r.PreviousHash] = i
		}
	}

	if genesis < 0 {
		out := make([]Record, len(records))
		copy(out, records)
		sortByTimestamp(out)
		return out
	}

	ordered := make([]Record, 0, len(records))
	placed := make([]bool, len(records))

	current := genesis
	ordered = append(ordered, records[current])
	placed[current] = true

	for len(ordered) < len(records) {
		next, ok := successors[records[current].Hash]
		if !ok || placed[next] {
			break
		}
		ordered = append(ordered, records[next])
		placed[next] = true
		current = next
	}

	if len(ordered) < len(records) {
		var leftover []Record
		for i, r := range records {
			if !placed[i] {
				leftover = append(leftover, r)
			}
		}
		sortByTimestamp(leftover)
		ordered = append(ordered, leftover...)
	}

	return ordered
}

// sortByTimestamp sorts records by parsed timestamp, oldest first. Records
// whose timestamps fail to parse compare lexicographically, keeping the
// sort total instead of panicking on corrupt input.
func sortByTimestamp(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		ti, erri := time.Parse(time.RFC3339Nano, records[i].Timestamp)
		tj, errj := time.Parse(time.RFC3339Nano, records[j].Timestamp)
		if erri != nil || errj != nil {
			return records[i].Timestamp < records[j].Timestamp
		}
		return ti.Before(tj)
	})
}
