package model

import "strings"

// FieldType is the simplified enum for the input widgets a form can carry.
type FieldType string

const (
	FieldTypeText         FieldType = "text"
	FieldTypeTel          FieldType = "tel"
	FieldTypeSelect       FieldType = "select"
	FieldTypeMultiSelect  FieldType = "multiselect"
	FieldTypeAutocomplete FieldType = "autocomplete"
	FieldTypeFile         FieldType = "file"
)

// SourceCountries marks select fields whose options come from the country
// catalog rather than a static list.
const SourceCountries = "countries"

// Option is a single choice offered by a select-like field.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Field models an individual input. Name is the wire name used when the form
// is serialised; repeated-group columns carry a "[]" suffix.
type Field struct {
	Name        string            `json:"name"`
	Type        FieldType         `json:"type"`
	Label       string            `json:"label,omitempty"`
	Placeholder string            `json:"placeholder,omitempty"`
	Required    bool              `json:"required"`
	Value       string            `json:"value,omitempty"`
	Default     string            `json:"default,omitempty"`
	Values      []string          `json:"values,omitempty"`
	Options     []Option          `json:"options,omitempty"`
	Source      string            `json:"source,omitempty"`
	Populated   bool              `json:"populated,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// IsRepeated reports whether the field is a positional column of a repeated
// group.
func (f *Field) IsRepeated() bool {
	if f == nil {
		return false
	}
	return strings.HasSuffix(f.Name, "[]")
}

// IsMultiValued reports whether the field contributes several values under the
// same name (multi-selects).
func (f *Field) IsMultiValued() bool {
	return f != nil && f.Type == FieldTypeMultiSelect
}

// Clear restores the field to its default value. Options stay in place so a
// populated nationality select keeps its catalog entries.
func (f *Field) Clear() {
	if f == nil {
		return
	}
	f.Value = f.Default
	f.Values = nil
}

// Clone returns a deep copy of the field definition.
func (f Field) Clone() Field {
	out := f
	if f.Values != nil {
		out.Values = append([]string{}, f.Values...)
	}
	if f.Options != nil {
		out.Options = append([]Option{}, f.Options...)
	}
	if f.Metadata != nil {
		out.Metadata = make(map[string]string, len(f.Metadata))
		for k, v := range f.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

// PlaceholderOption is the empty leading option of a catalog-backed select.
func PlaceholderOption(label string) Option {
	return Option{Value: "", Label: label}
}
