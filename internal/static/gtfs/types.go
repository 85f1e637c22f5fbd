package gtfs

// Data holds the GTFS tables needed to derive a station network
type Data struct {
	Routes    []Route
	Stops     []Stop
	Trips     []Trip
	StopTimes []StopTime
}

// Route represents a route from routes.txt
type Route struct {
	RouteID        string
	RouteShortName string
	RouteLongName  string
}

// location_type values from stops.txt
const (
	LocationStop    = 0
	LocationStation = 1
)

// Stop represents a stop from stops.txt
type Stop struct {
	StopID        string
	StopName      string
	LocationType  int
	ParentStation string
}

// Trip represents a trip from trips.txt
type Trip struct {
	RouteID      string
	TripID       string
	TripHeadsign string
}

// StopTime represents a stop time from stop_times.txt
type StopTime struct {
	TripID       string
	StopID       string
	StopSequence int
}
