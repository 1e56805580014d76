package main

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-parkentry/pkg/form"
)

// Visit is the YAML description of a registration used by the submit command.
//
//	form_type: tourist
//	values:
//	  company_option: Company
//	  company_name: Matoke Tours Ltd
//	  activities: [Game Drive, Launch Trip]
//	clients:
//	  - client_name: Ann
//	    client_nationality: Kenya
//	group_file: grouplist.csv
type Visit struct {
	FormType  string               `yaml:"form_type"`
	Values    map[string]valueList `yaml:"values"`
	Clients   []map[string]string  `yaml:"clients"`
	Vehicles  []map[string]string  `yaml:"vehicles"`
	GroupFile string               `yaml:"group_file"`
}

// valueList accepts either a single scalar or a sequence.
type valueList []string

func (v *valueList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*v = valueList{node.Value}
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := node.Decode(&items); err != nil {
			return err
		}
		*v = items
		return nil
	default:
		return fmt.Errorf("line %d: expected a value or a list", node.Line)
	}
}

// LoadVisit reads a visit file.
func LoadVisit(path string) (*Visit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("visit: read %s: %w", path, err)
	}
	visit := &Visit{}
	if err := yaml.Unmarshal(data, visit); err != nil {
		return nil, fmt.Errorf("visit: parse %s: %w", path, err)
	}
	if visit.GroupFile != "" && !filepath.IsAbs(visit.GroupFile) {
		visit.GroupFile = filepath.Join(filepath.Dir(path), visit.GroupFile)
	}
	return visit, nil
}

// FormValues flattens the visit into posted form values. Group entries become
// aligned "<name>[]" columns; a key missing from one entry posts as empty.
func (v *Visit) FormValues() map[string][]string {
	out := make(map[string][]string, len(v.Values)+1)
	if v.FormType != "" {
		out[form.FieldFormType] = []string{v.FormType}
	}
	for key, values := range v.Values {
		out[key] = append([]string{}, values...)
	}
	addColumns(out, v.Clients)
	addColumns(out, v.Vehicles)
	return out
}

func addColumns(out map[string][]string, entries []map[string]string) {
	keys := map[string]struct{}{}
	for _, entry := range entries {
		for key := range entry {
			keys[key] = struct{}{}
		}
	}
	names := make([]string, 0, len(keys))
	for key := range keys {
		names = append(names, key)
	}
	sort.Strings(names)

	for _, key := range names {
		column := make([]string, len(entries))
		for i, entry := range entries {
			column[i] = entry[key]
		}
		out[key+"[]"] = column
	}
}

// Apply writes the visit into f and attaches the group file, if any.
func (v *Visit) Apply(ctx context.Context, f *form.Form) error {
	if err := f.Restore(ctx, v.FormValues()); err != nil {
		return err
	}
	if v.GroupFile == "" {
		return nil
	}
	data, err := os.ReadFile(v.GroupFile)
	if err != nil {
		return fmt.Errorf("visit: read group file: %w", err)
	}
	return f.Attach(form.File{
		FieldName:   form.FieldGroupUpload,
		Filename:    filepath.Base(v.GroupFile),
		ContentType: mime.TypeByExtension(filepath.Ext(v.GroupFile)),
		Data:        data,
	})
}
