// Package config defines the field schema for an index: which record
// attributes are text-indexed, which are stored untokenized, and the
// relevance boost attached to each text field. The schema is fixed
// configuration, built once and shared read-only by every component.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

// FieldKind classifies how a field participates in the index.
type FieldKind string

const (
	// TextIndexed fields are analyzed into terms and searchable by prefix.
	TextIndexed FieldKind = "text"
	// NumericStored fields are stored verbatim but never tokenized.
	NumericStored FieldKind = "numeric"
	// OpaqueStored fields are stored verbatim for display/output only.
	OpaqueStored FieldKind = "opaque"
)

// FieldDescriptor declares one field of the schema.
type FieldDescriptor struct {
	Name     string    `yaml:"name" validate:"required"`
	Kind     FieldKind `yaml:"kind" validate:"required,oneof=text numeric opaque"`
	Boost    float64   `yaml:"boost,omitempty"`
	Optional bool      `yaml:"optional,omitempty"`
}

// Schema is the full set of field descriptors for an index, plus the field
// whose stored value is rendered for each search hit.
type Schema struct {
	Fields       []FieldDescriptor `yaml:"fields" validate:"required,min=1,dive"`
	DisplayField string            `yaml:"display_field" validate:"required"`
}

// Field returns the descriptor for name, if declared.
func (s *Schema) Field(name string) (FieldDescriptor, bool) {
	for _, fd := range s.Fields {
		if fd.Name == name {
			return fd, true
		}
	}
	return FieldDescriptor{}, false
}

// TextFields returns the descriptors of all text-indexed fields, in
// declaration order.
func (s *Schema) TextFields() []FieldDescriptor {
	fields := make([]FieldDescriptor, 0, len(s.Fields))
	for _, fd := range s.Fields {
		if fd.Kind == TextIndexed {
			fields = append(fields, fd)
		}
	}
	return fields
}

// Validate checks the schema for structural problems. All problems are
// reported together rather than one at a time.
func (s *Schema) Validate() error {
	var result *multierror.Error

	seen := make(map[string]bool)
	for _, fd := range s.Fields {
		if fd.Name == "" {
			result = multierror.Append(result, fmt.Errorf("field name cannot be empty"))
			continue
		}
		if seen[fd.Name] {
			result = multierror.Append(result, fmt.Errorf("duplicate field %q", fd.Name))
		}
		seen[fd.Name] = true

		switch fd.Kind {
		case TextIndexed:
			if fd.Boost <= 0 {
				result = multierror.Append(result, fmt.Errorf("text field %q must declare a positive boost, got %v", fd.Name, fd.Boost))
			}
		case NumericStored, OpaqueStored:
			if fd.Boost != 0 {
				result = multierror.Append(result, fmt.Errorf("stored-only field %q cannot carry a boost", fd.Name))
			}
		default:
			result = multierror.Append(result, fmt.Errorf("field %q has unknown kind %q", fd.Name, fd.Kind))
		}
	}

	if s.DisplayField == "" {
		result = multierror.Append(result, fmt.Errorf("display field must be set"))
	} else if !seen[s.DisplayField] {
		result = multierror.Append(result, fmt.Errorf("display field %q is not a declared field", s.DisplayField))
	}

	if len(s.TextFields()) == 0 {
		result = multierror.Append(result, fmt.Errorf("schema declares no text-indexed fields"))
	}

	return result.ErrorOrNil()
}

// BoostTable builds the per-field weight map used during scoring. It fails
// if any text-indexed field lacks a positive boost, so a misconfigured
// schema is caught at startup rather than producing silently unweighted
// results.
func (s *Schema) BoostTable() (map[string]float64, error) {
	boosts := make(map[string]float64)
	for _, fd := range s.TextFields() {
		if fd.Boost <= 0 {
			return nil, fmt.Errorf("text field %q has no declared boost", fd.Name)
		}
		boosts[fd.Name] = fd.Boost
	}
	return boosts, nil
}

// LoadSchema reads a schema from a YAML file and validates it.
func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is an operator-supplied config location
	if err != nil {
		return nil, fmt.Errorf("reading schema file %s: %w", path, err)
	}
	var schema Schema
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parsing schema file %s: %w", path, err)
	}
	if err := validator.New().Struct(&schema); err != nil {
		return nil, fmt.Errorf("invalid schema file %s: %w", path, err)
	}
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("invalid schema file %s: %w", path, err)
	}
	return &schema, nil
}

// AirportSchema returns the schema for the bundled airports dataset: the
// five query fields with their relevance boosts, plus the stored-only
// attributes needed to render and link results.
func AirportSchema() *Schema {
	return &Schema{
		DisplayField: "name",
		Fields: []FieldDescriptor{
			{Name: "name", Kind: TextIndexed, Boost: 3},
			{Name: "municipality", Kind: TextIndexed, Boost: 2, Optional: true},
			{Name: "ident", Kind: TextIndexed, Boost: 2},
			{Name: "type", Kind: TextIndexed, Boost: 1},
			{Name: "continent", Kind: TextIndexed, Boost: 0.25},
			{Name: "latitude_deg", Kind: NumericStored},
			{Name: "longitude_deg", Kind: NumericStored},
			{Name: "elevation_ft", Kind: NumericStored, Optional: true},
			{Name: "iso_country", Kind: OpaqueStored},
			{Name: "iso_region", Kind: OpaqueStored},
			{Name: "scheduled_service", Kind: OpaqueStored},
			{Name: "gps_code", Kind: OpaqueStored, Optional: true},
			{Name: "iata_code", Kind: OpaqueStored, Optional: true},
			{Name: "local_code", Kind: OpaqueStored, Optional: true},
			{Name: "home_link", Kind: OpaqueStored, Optional: true},
			{Name: "wikipedia_link", Kind: OpaqueStored, Optional: true},
			{Name: "keywords", Kind: OpaqueStored, Optional: true},
		},
	}
}
