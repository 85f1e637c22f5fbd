package gtfs

import (
	"sort"
	"strings"

	"github.com/you/metroroute/internal/routing"
)

// stationNames resolves every stop_id trips can serve to the name travellers
// know it by. A platform whose parent is a station takes the parent's name.
// Entrances, generic nodes and boarding areas are not named.
func (d *Data) stationNames() map[string]string {
	byID := make(map[string]Stop, len(d.Stops))
	for _, s := range d.Stops {
		byID[s.StopID] = s
	}

	names := make(map[string]string, len(d.Stops))
	for _, s := range d.Stops {
		if s.LocationType != LocationStop {
			continue
		}
		name := s.StopName
		if parent, ok := byID[s.ParentStation]; ok && parent.LocationType == LocationStation && parent.StopName != "" {
			name = parent.StopName
		}
		if name == "" {
			name = s.StopID
		}
		names[s.StopID] = name
	}
	return names
}

// tripStations returns each trip's ordered station names, with consecutive
// repeats (two platforms of one station) collapsed.
func (d *Data) tripStations() map[string][]string {
	names := d.stationNames()

	byTrip := make(map[string][]StopTime)
	for _, st := range d.StopTimes {
		byTrip[st.TripID] = append(byTrip[st.TripID], st)
	}

	out := make(map[string][]string, len(byTrip))
	for tripID, stopTimes := range byTrip {
		sort.SliceStable(stopTimes, func(i, j int) bool {
			return stopTimes[i].StopSequence < stopTimes[j].StopSequence
		})
		var stations []string
		for _, st := range stopTimes {
			name, ok := names[st.StopID]
			if !ok {
				name = st.StopID
			}
			if len(stations) > 0 && stations[len(stations)-1] == name {
				continue
			}
			stations = append(stations, name)
		}
		out[tripID] = stations
	}
	return out
}

// LineRecords returns one record per distinct stop pattern of each route and
// direction, in trips.txt order. Records are named "<route>(<headsign>)" so
// both directions of a route normalize to the same line.
func (d *Data) LineRecords() []routing.LineRecord {
	routeNames := make(map[string]string, len(d.Routes))
	for _, r := range d.Routes {
		name := r.RouteShortName
		if name == "" {
			name = r.RouteLongName
		}
		routeNames[r.RouteID] = name
	}

	stationsByTrip := d.tripStations()
	seen := make(map[string]struct{})
	var records []routing.LineRecord

	for _, trip := range d.Trips {
		stations := stationsByTrip[trip.TripID]
		if len(stations) < 2 {
			continue
		}

		name := routeNames[trip.RouteID]
		if name == "" {
			name = trip.RouteID
		}
		if trip.TripHeadsign != "" {
			name += "(" + trip.TripHeadsign + ")"
		}

		key := name + "\x00" + strings.Join(stations, "\x00")
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		records = append(records, routing.LineRecord{Name: name, Stations: stations})
	}
	return records
}
