package routing

import (
	"sort"
	"strings"
)

// edgeSeparator joins the two station names of an edge key.
// Station names are not expected to contain it.
const edgeSeparator = "|"

// LineRecord is one published line: its raw name and the ordered stations it serves.
type LineRecord struct {
	Name     string   `json:"name"`
	Stations []string `json:"stations"`
}

// EdgeLines maps an edge key to the sorted raw names of every line running over that edge.
// A missing key means no line metadata is known for the edge.
type EdgeLines map[string][]string

// EdgeKey returns the order-independent key of the edge between a and b.
func EdgeKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + edgeSeparator + b
}

// Lines returns the raw line names for the edge between a and b, or nil.
func (e EdgeLines) Lines(a, b string) []string {
	return e[EdgeKey(a, b)]
}

// NormalizeLineName strips a parenthesized direction or branch suffix from a raw
// line label, e.g. "Line 1(Eastbound)" -> "Line 1". The second return value is
// false for an empty label.
func NormalizeLineName(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	if i := strings.IndexByte(raw, '('); i >= 0 {
		raw = raw[:i]
	}
	return strings.TrimSpace(raw), true
}

// normalizedLineSet normalizes raw names into a sorted set. The first element is
// the line picked whenever a segment or search state has to board "some" line of
// the edge.
func normalizedLineSet(raw []string) []string {
	if len(raw) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(raw))
	set := make([]string, 0, len(raw))
	for _, name := range raw {
		n, ok := NormalizeLineName(name)
		if !ok || n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		set = append(set, n)
	}
	sort.Strings(set)
	return set
}

func containsLine(set []string, line string) bool {
	i := sort.SearchStrings(set, line)
	return i < len(set) && set[i] == line
}

// BuildEdgeLines indexes every consecutive station pair of every record under the
// record's raw line name. Records without a name or with fewer than two named
// stations contribute nothing; records are never modified.
func BuildEdgeLines(records []LineRecord) EdgeLines {
	sets := make(map[string]map[string]struct{})
	for _, rec := range records {
		if rec.Name == "" {
			continue
		}
		prev := ""
		for _, station := range rec.Stations {
			if station == "" {
				continue
			}
			if prev != "" {
				key := EdgeKey(prev, station)
				if sets[key] == nil {
					sets[key] = make(map[string]struct{})
				}
				sets[key][rec.Name] = struct{}{}
			}
			prev = station
		}
	}

	index := make(EdgeLines, len(sets))
	for key, names := range sets {
		list := make([]string, 0, len(names))
		for name := range names {
			list = append(list, name)
		}
		sort.Strings(list)
		index[key] = list
	}
	return index
}
