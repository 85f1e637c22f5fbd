package gtfs

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/you/metroroute/internal/routing"
)

func writeZip(t *testing.T, files map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "feed.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return path
}

func sampleFeed() map[string]string {
	return map[string]string{
		"routes.txt": "\ufeffroute_id,route_short_name,route_long_name,route_type\n" +
			"1,L1,Hospital de Bellvitge - Fondo,1\n" +
			"3,L3,Zona Universitària - Trinitat Nova,1\n",
		"stops.txt": "stop_id,stop_name,location_type,parent_station\n" +
			"P-ESP,Espanya,1,\n" +
			"E1,Espanya L1,0,P-ESP\n" +
			"E3,Espanya L3,0,P-ESP\n" +
			"ROC,Rocafort,0,\n" +
			"N-URG,Urgell vestibule,3,\n" +
			"URG,Urgell,0,N-URG\n" +
			"TAR,Tarragona,0,\n" +
			"PAR,Paral·lel,0,\n",
		"trips.txt": "route_id,service_id,trip_id,trip_headsign,direction_id\n" +
			"1,wk,t1,Fondo,0\n" +
			"1,wk,t2,Fondo,0\n" +
			"1,wk,t3,Hospital de Bellvitge,1\n" +
			"3,wk,t4,,0\n",
		"stop_times.txt": "trip_id,arrival_time,departure_time,stop_id,stop_sequence\n" +
			"t1,08:00:00,08:00:00,E1,1\n" +
			"t1,08:02:00,08:02:00,ROC,2\n" +
			"t1,08:04:00,08:04:00,URG,3\n" +
			"t2,09:04:00,09:04:00,URG,3\n" +
			"t2,09:00:00,09:00:00,E1,1\n" +
			"t2,09:02:00,09:02:00,ROC,2\n" +
			"t3,08:10:00,08:10:00,URG,1\n" +
			"t3,08:12:00,08:12:00,ROC,2\n" +
			"t3,08:14:00,08:14:00,E1,3\n" +
			"t4,08:00:00,08:00:00,TAR,1\n" +
			"t4,08:02:00,08:02:00,E3,2\n" +
			"t4,08:04:00,08:04:00,PAR,bad\n",
	}
}

func TestParse(t *testing.T) {
	data, err := Parse(writeZip(t, sampleFeed()))
	require.NoError(t, err)

	assert.Len(t, data.Routes, 2)
	assert.Equal(t, "L1", data.Routes[0].RouteShortName)
	assert.Len(t, data.Stops, 8)
	assert.Equal(t, LocationStation, data.Stops[0].LocationType)
	assert.Len(t, data.Trips, 4)
	// the row with a non-numeric stop_sequence is dropped
	assert.Len(t, data.StopTimes, 11)
}

func TestParse_MissingRequiredFile(t *testing.T) {
	files := sampleFeed()
	delete(files, "stop_times.txt")

	_, err := Parse(writeZip(t, files))
	assert.ErrorIs(t, err, ErrMissingFile)
}

func TestParse_NotAZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.zip")
	require.NoError(t, os.WriteFile(path, []byte("nope"), 0644))

	_, err := Parse(path)
	assert.Error(t, err)
}

func TestLineRecords(t *testing.T) {
	data, err := Parse(writeZip(t, sampleFeed()))
	require.NoError(t, err)

	records := data.LineRecords()

	// t2 repeats t1's pattern; t4 has only two stops left after the bad row
	assert.Equal(t, []routing.LineRecord{
		{Name: "L1(Fondo)", Stations: []string{"Espanya", "Rocafort", "Urgell"}},
		{Name: "L1(Hospital de Bellvitge)", Stations: []string{"Urgell", "Rocafort", "Espanya"}},
		{Name: "L3", Stations: []string{"Tarragona", "Espanya"}},
	}, records)

	g := routing.GraphFromLines(records)
	idx := routing.BuildEdgeLines(records)

	route, err := routing.Plan(g, idx, "Urgell", "Tarragona", routing.StrategyLines)
	require.NoError(t, err)
	assert.Equal(t, []string{"Urgell", "Rocafort", "Espanya", "Tarragona"}, route.Path)
	assert.Equal(t, 1, route.Transfers)
	require.Len(t, route.Segments, 2)
	assert.Equal(t, "L1", route.Segments[0].Line)
	assert.Equal(t, "L3", route.Segments[1].Line)
}

func TestStationNames(t *testing.T) {
	data, err := Parse(writeZip(t, sampleFeed()))
	require.NoError(t, err)

	names := data.stationNames()

	// platforms take their parent station's name
	assert.Equal(t, "Espanya", names["E1"])
	assert.Equal(t, "Espanya", names["E3"])
	// a parent that is not a station does not rename the platform
	assert.Equal(t, "Urgell", names["URG"])
	// only stops are named
	assert.NotContains(t, names, "P-ESP")
	assert.NotContains(t, names, "N-URG")
}
