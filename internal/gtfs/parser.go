package gtfs

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"sort"
	"strings"
)

// requiredColumns lists the columns each GTFS file must carry before the
// reconciliation engine is allowed to see the data.
var requiredColumns = map[string][]string{
	"routes.txt":         {"route_id", "route_short_name"},
	"trips.txt":          {"trip_id", "route_id", "service_id"},
	"stop_times.txt":     {"trip_id", "stop_sequence", "arrival_time", "departure_time", "stop_id"},
	"stops.txt":          {"stop_id", "stop_name"},
	"calendar.txt":       {"service_id", "start_date", "end_date", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"},
	"calendar_dates.txt": {"service_id", "date", "exception_type"},
}

// requiredFiles must all be present in the archive. calendar_dates.txt is
// optional per the GTFS spec; a missing file yields an empty exception list.
var requiredFiles = []string{"routes.txt", "trips.txt", "stop_times.txt", "stops.txt", "calendar.txt"}

// ParseZip extracts and parses all GTFS CSV files from a zip archive.
func ParseZip(path string, logger *slog.Logger) (*Feed, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	feed := &Feed{}
	seen := make(map[string]bool)

	for _, f := range r.File {
		switch f.Name {
		case "routes.txt":
			feed.Routes, err = parseCSVFile[Route](f)
		case "stops.txt":
			feed.Stops, err = parseCSVFile[Stop](f)
		case "trips.txt":
			feed.Trips, err = parseCSVFile[Trip](f)
		case "stop_times.txt":
			feed.StopTimes, err = parseCSVFile[StopTime](f)
		case "calendar.txt":
			feed.Calendar, err = parseCSVFile[CalendarEntry](f)
		case "calendar_dates.txt":
			feed.CalendarDates, err = parseCSVFile[CalendarDate](f)
		default:
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", f.Name, err)
		}
		seen[f.Name] = true
	}

	for _, name := range requiredFiles {
		if !seen[name] {
			return nil, fmt.Errorf("missing GTFS file: %s", name)
		}
	}

	logger.Info("GTFS feed parsed",
		"routes", len(feed.Routes),
		"stops", len(feed.Stops),
		"trips", len(feed.Trips),
		"stop_times", len(feed.StopTimes),
		"calendar", len(feed.Calendar),
		"calendar_dates", len(feed.CalendarDates),
	)

	return feed, nil
}

// parseCSVFile reads a single CSV file from the zip and decodes it into a slice of T.
func parseCSVFile[T any](f *zip.File) ([]T, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer rc.Close()

	reader := csv.NewReader(rc)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	// Read header
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	// Strip BOM from first field if present
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\xef\xbb\xbf")
	}

	if missing := missingColumns(header, requiredColumns[f.Name]); len(missing) > 0 {
		return nil, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}

	// Build column-to-field index
	fieldMap := buildFieldMap[T](header)

	var results []T
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		item := decodeRecord[T](record, fieldMap)
		results = append(results, item)
	}

	return results, nil
}

type fieldMapping struct {
	csvIndex   int
	fieldIndex int
}

// missingColumns returns the required column names absent from the header, sorted.
func missingColumns(header, required []string) []string {
	present := make(map[string]bool, len(header))
	for _, col := range header {
		present[strings.TrimSpace(col)] = true
	}
	var missing []string
	for _, col := range required {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	sort.Strings(missing)
	return missing
}

// buildFieldMap creates a mapping from CSV column positions to struct field positions.
func buildFieldMap[T any](header []string) []fieldMapping {
	var t T
	typ := reflect.TypeOf(t)

	// Build a map of csv tag -> field index
	tagToField := make(map[string]int)
	for i := 0; i < typ.NumField(); i++ {
		tag := typ.Field(i).Tag.Get("csv")
		if tag != "" {
			tagToField[tag] = i
		}
	}

	var mappings []fieldMapping
	for csvIdx, colName := range header {
		colName = strings.TrimSpace(colName)
		if fieldIdx, ok := tagToField[colName]; ok {
			mappings = append(mappings, fieldMapping{csvIndex: csvIdx, fieldIndex: fieldIdx})
		}
	}
	return mappings
}

// decodeRecord fills a struct T from a CSV record using the field mapping.
func decodeRecord[T any](record []string, fieldMap []fieldMapping) T {
	var t T
	v := reflect.ValueOf(&t).Elem()
	for _, fm := range fieldMap {
		if fm.csvIndex < len(record) {
			v.Field(fm.fieldIndex).SetString(record[fm.csvIndex])
		}
	}
	return t
}
