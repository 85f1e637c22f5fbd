package models

// Segment is a maximal run of a route travelled on one line
type Segment struct {
	Line     string   `json:"line"`
	Start    string   `json:"start"`
	End      string   `json:"end"`
	Stations []string `json:"stations"`
}

// RouteResponse is the JSON response for GET /api/v1/route
type RouteResponse struct {
	Route      []string  `json:"route"`
	Transfers  int       `json:"transfers"`
	Segments   []Segment `json:"segments"`
	Strategy   string    `json:"strategy"`
	Stops      int       `json:"stops"`
	SnapshotID string    `json:"snapshotId"`
}

// NoRouteResponse is returned when both stations exist but are not connected.
// Route is always null.
type NoRouteResponse struct {
	Error string   `json:"error"`
	Route []string `json:"route"`
}

// StationsResponse is the JSON response for GET /api/v1/stations
type StationsResponse struct {
	Stations []string `json:"stations"`
	Count    int      `json:"count"`
}

// Line is a normalized line name with the raw names published for it
type Line struct {
	Name     string   `json:"name"`
	Variants []string `json:"variants"`
}

// LinesResponse is the JSON response for GET /api/v1/lines
type LinesResponse struct {
	Lines []Line `json:"lines"`
	Count int    `json:"count"`
}
