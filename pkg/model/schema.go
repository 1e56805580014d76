package model

import "strings"

// GroupKind identifies a repeated group.
type GroupKind string

const (
	GroupClient  GroupKind = "client"
	GroupVehicle GroupKind = "vehicle"
)

// Schema is the fixed set of fields every entry of a repeated group owns.
type Schema struct {
	Kind   GroupKind
	Title  string
	Fields []Field
}

// ClientSchema describes one client entry.
func ClientSchema() Schema {
	return Schema{
		Kind:  GroupClient,
		Title: "Client",
		Fields: []Field{
			{Name: "client_name[]", Type: FieldTypeText, Label: "Client Name", Required: true},
			{Name: "client_contact[]", Type: FieldTypeTel, Label: "Contact"},
			{
				Name:    "client_nationality[]",
				Type:    FieldTypeSelect,
				Label:   "Nationality",
				Source:  SourceCountries,
				Options: []Option{PlaceholderOption("Select nationality")},
			},
		},
	}
}

// VehicleSchema describes one vehicle entry.
func VehicleSchema() Schema {
	return Schema{
		Kind:  GroupVehicle,
		Title: "Vehicle",
		Fields: []Field{
			{Name: "car_type[]", Type: FieldTypeText, Label: "Car Type"},
			{Name: "car_reg[]", Type: FieldTypeText, Label: "Reg. Number"},
			{Name: "driver_name[]", Type: FieldTypeText, Label: "Driver Name"},
			{Name: "driver_phone[]", Type: FieldTypeTel, Label: "Driver Phone"},
		},
	}
}

// SchemaFor returns the schema registered for kind.
func SchemaFor(kind GroupKind) (Schema, bool) {
	switch kind {
	case GroupClient:
		return ClientSchema(), true
	case GroupVehicle:
		return VehicleSchema(), true
	default:
		return Schema{}, false
	}
}

// ColumnNames returns the wire names of the schema's fields in order.
func (s Schema) ColumnNames() []string {
	out := make([]string, 0, len(s.Fields))
	for _, field := range s.Fields {
		out = append(out, field.Name)
	}
	return out
}

// BaseName strips the repeated-group suffix from a wire name.
func BaseName(name string) string {
	return strings.TrimSuffix(name, "[]")
}
