package display

import (
	"fmt"
	"html/template"
	"os"

	"rubanwatch/internal/geo"
	"rubanwatch/internal/monitor"
	"rubanwatch/internal/schedule"
)

// MapWriter renders the current vehicle positions as a standalone HTML map.
type MapWriter struct {
	path string
}

// NewMapWriter creates a map writer targeting the given output file.
func NewMapWriter(path string) *MapWriter {
	return &MapWriter{path: path}
}

type mapMarker struct {
	Lat, Lon float64
	Line     string
	Popup    template.HTML
}

type mapPage struct {
	CenterLat, CenterLon float64
	Markers              []mapMarker
}

// Write renders the map for one cycle. Vehicles without coordinates are
// left out; with no located vehicle at all, no file is written.
func (m *MapWriter) Write(report *monitor.Report, idx *schedule.Index) error {
	page := mapPage{}
	var sumLat, sumLon float64

	for _, v := range report.SortedVehicles() {
		if v.Latitude == nil || v.Longitude == nil {
			continue
		}
		s := idx.Summary(v.TripID)

		popup := fmt.Sprintf("%s - line %s<br>Dest: %s<br>Status: %s<br>Delay: %.1f min",
			template.HTMLEscapeString(v.Label),
			template.HTMLEscapeString(s.Line),
			template.HTMLEscapeString(s.Destination),
			v.Status, v.DelayMinutes())

		if nextID := idx.NextStopID(v.TripID, v.StopSequence); nextID != "" {
			if lat, lon, ok := idx.StopLocation(nextID); ok {
				dist := geo.Haversine(*v.Latitude, *v.Longitude, lat, lon)
				popup += fmt.Sprintf("<br>%.0f m to %s", dist,
					template.HTMLEscapeString(idx.StopName(nextID)))
			}
		}

		page.Markers = append(page.Markers, mapMarker{
			Lat:   *v.Latitude,
			Lon:   *v.Longitude,
			Line:  s.Line,
			Popup: template.HTML(popup),
		})
		sumLat += *v.Latitude
		sumLon += *v.Longitude
	}

	if len(page.Markers) == 0 {
		return nil
	}
	page.CenterLat = sumLat / float64(len(page.Markers))
	page.CenterLon = sumLon / float64(len(page.Markers))

	f, err := os.Create(m.path)
	if err != nil {
		return fmt.Errorf("create map file: %w", err)
	}
	defer f.Close()

	if err := mapTemplate.Execute(f, page); err != nil {
		return fmt.Errorf("render map: %w", err)
	}
	return nil
}

var mapTemplate = template.Must(template.New("map").Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>Vehicle map</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>html, body, #map { height: 100%; margin: 0; }</style>
</head>
<body>
<div id="map"></div>
<script>
var map = L.map('map').setView([{{.CenterLat}}, {{.CenterLon}}], 12);
L.tileLayer('https://tile.openstreetmap.org/{z}/{x}/{y}.png', {
  attribution: '&copy; OpenStreetMap contributors'
}).addTo(map);
{{range .Markers}}
L.marker([{{.Lat}}, {{.Lon}}]).addTo(map)
  .bindPopup({{.Popup}})
  .bindTooltip("Line {{.Line}}");
{{end}}
</script>
</body>
</html>
`))
