// Package airports reads the airports CSV dataset into records ready for
// indexing. It is the record-producing collaborator at the engine's input
// boundary: each row either becomes a well-formed document or the whole
// parse fails with a ParseError naming the offending row and field.
package airports

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	apperrors "github.com/andrewlalis/airsearch/internal/errors"
	"github.com/andrewlalis/airsearch/model"
)

// requiredColumns are the CSV columns every row must supply a cell for.
var requiredColumns = []string{
	"id", "ident", "type", "name", "latitude_deg", "longitude_deg",
	"elevation_ft", "continent", "iso_country", "iso_region",
	"municipality", "scheduled_service", "gps_code", "iata_code",
	"local_code", "home_link", "wikipedia_link", "keywords",
}

// ParseFile reads the airports CSV at path.
func ParseFile(path string) ([]model.Document, error) {
	file, err := os.Open(path) // #nosec G304 -- path is an operator-supplied dataset location
	if err != nil {
		return nil, fmt.Errorf("opening airports file %s: %w", path, err)
	}
	defer file.Close()
	return Parse(file)
}

// Parse reads airport records from r. The first row must be a header
// containing every required column.
func Parse(r io.Reader) ([]model.Document, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, apperrors.NewParseError(0, "", fmt.Sprintf("reading header: %v", err))
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, apperrors.NewParseError(0, name, "missing column in header")
		}
	}

	var docs []model.Document
	for row := 1; ; row++ {
		cells, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewParseError(row, "", err.Error())
		}
		doc, err := parseRow(row, columns, cells)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func parseRow(row int, columns map[string]int, cells []string) (model.Document, error) {
	get := func(name string) (string, error) {
		i := columns[name]
		if i >= len(cells) {
			return "", apperrors.NewParseError(row, name, "row has too few cells")
		}
		return cells[i], nil
	}

	idCell, err := get("id")
	if err != nil {
		return model.Document{}, err
	}
	id, err := strconv.ParseUint(strings.TrimSpace(idCell), 10, 64)
	if err != nil {
		return model.Document{}, apperrors.NewParseError(row, "id", fmt.Sprintf("not a valid id: %q", idCell))
	}

	fields := make(map[string]model.Value)
	for _, name := range []string{"ident", "type", "name", "continent", "iso_country", "iso_region", "municipality"} {
		cell, err := get(name)
		if err != nil {
			return model.Document{}, err
		}
		fields[name] = model.String(cell)
	}

	for _, name := range []string{"latitude_deg", "longitude_deg"} {
		cell, err := get(name)
		if err != nil {
			return model.Document{}, err
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		if err != nil {
			return model.Document{}, apperrors.NewParseError(row, name, fmt.Sprintf("not a valid number: %q", cell))
		}
		fields[name] = model.Float(value)
	}

	elevationCell, err := get("elevation_ft")
	if err != nil {
		return model.Document{}, err
	}
	if trimmed := strings.TrimSpace(elevationCell); trimmed != "" {
		elevation, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return model.Document{}, apperrors.NewParseError(row, "elevation_ft", fmt.Sprintf("not a valid integer: %q", elevationCell))
		}
		fields["elevation_ft"] = model.Int(elevation)
	}

	scheduledCell, err := get("scheduled_service")
	if err != nil {
		return model.Document{}, err
	}
	fields["scheduled_service"] = model.Bool(strings.EqualFold(strings.TrimSpace(scheduledCell), "yes"))

	// Optional free-text columns: a blank cell means the field is absent,
	// not stored-as-empty.
	for _, name := range []string{"gps_code", "iata_code", "local_code", "home_link", "wikipedia_link", "keywords"} {
		cell, err := get(name)
		if err != nil {
			return model.Document{}, err
		}
		if strings.TrimSpace(cell) != "" {
			fields[name] = model.String(cell)
		}
	}

	return model.Document{ID: id, Fields: fields}, nil
}
