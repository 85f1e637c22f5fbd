package routing

// Segment is a maximal run of a path ridden on one normalized line.
// Neighboring segments share their boundary station.
type Segment struct {
	Line     string   `json:"line"`
	Start    string   `json:"start"`
	End      string   `json:"end"`
	Stations []string `json:"stations"`
}

// CountTransfers splits path into line segments and counts the line changes
// between them.
//
// An edge without line metadata extends the open segment. Before the first
// line-bearing edge there is no open segment, so such edges are not part of any
// segment.
func CountTransfers(path []string, idx EdgeLines) (int, []Segment) {
	if len(path) < 2 {
		return 0, []Segment{}
	}

	transfers := 0
	segments := []Segment{}
	var current *Segment

	for i := 0; i+1 < len(path); i++ {
		a, b := path[i], path[i+1]
		lines := normalizedLineSet(idx.Lines(a, b))

		switch {
		case len(lines) == 0:
			if current != nil {
				current.Stations = append(current.Stations, b)
				current.End = b
			}
		case current == nil:
			current = newSegment(lines[0], a, b)
		case containsLine(lines, current.Line):
			current.Stations = append(current.Stations, b)
			current.End = b
		default:
			transfers++
			segments = append(segments, *current)
			current = newSegment(lines[0], a, b)
		}
	}

	if current != nil {
		segments = append(segments, *current)
	}
	return transfers, segments
}

func newSegment(line, a, b string) *Segment {
	return &Segment{
		Line:     line,
		Start:    a,
		End:      b,
		Stations: []string{a, b},
	}
}
