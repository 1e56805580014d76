package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-parkentry/pkg/form"
	"github.com/goliatone/go-parkentry/pkg/group"
	"github.com/goliatone/go-parkentry/pkg/model"
)

const selectPageSize = 12

// Runner walks a visitor through the registration form in the terminal.
type Runner struct {
	driver   PromptDriver
	out      io.Writer
	theme    Theme
	readFile FileReader
}

// New constructs a runner with defaults (survey driver on stdout).
func New(options ...Option) (*Runner, error) {
	r := &Runner{
		out:      os.Stdout,
		readFile: defaultFileReader,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(r.out)
	}
	return r, nil
}

// Fill prompts for the section, its fields and its group entries, then
// validates the result. Fields required only under a condition are asked
// when the condition holds.
func (r *Runner) Fill(ctx context.Context, f *form.Form) error {
	if ctx == nil {
		return errors.New("tui: context is required")
	}
	if f == nil {
		return errors.New("tui: form is nil")
	}

	if err := r.chooseSection(ctx, f); err != nil {
		return err
	}
	sec := f.Active()

	for _, field := range sec.Fields {
		if !sec.ConditionHolds(field) {
			continue
		}
		if err := r.promptScalar(ctx, f, sec, field); err != nil {
			return err
		}
	}
	for _, m := range sec.Groups {
		if err := r.promptGroup(ctx, f, m); err != nil {
			return err
		}
	}
	return f.Validate()
}

func (r *Runner) chooseSection(ctx context.Context, f *form.Form) error {
	sections := f.Sections()
	labels := make([]string, 0, len(sections))
	current := 0
	for i, sec := range sections {
		labels = append(labels, sec.ID.Title())
		if f.Visible(sec.ID) {
			current = i
		}
	}
	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      "Registration type",
		Options:      labels,
		DefaultIndex: current,
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(sections) {
		return ErrNoChoice
	}
	return f.Select(ctx, sections[idx].ID)
}

func (r *Runner) promptScalar(ctx context.Context, f *form.Form, sec *form.Section, field *model.Field) error {
	switch field.Type {
	case model.FieldTypeMultiSelect:
		labels, values := optionLists(field.Options)
		picked, err := r.driver.MultiSelect(ctx, SelectConfig{
			Message:  field.Label,
			Options:  labels,
			PageSize: selectPageSize,
		})
		if err != nil {
			return err
		}
		chosen := make([]string, 0, len(picked))
		for _, i := range picked {
			if i >= 0 && i < len(values) {
				chosen = append(chosen, values[i])
			}
		}
		return f.SetValues(field.Name, chosen)

	case model.FieldTypeFile:
		path, err := r.driver.Input(ctx, InputConfig{
			Message: field.Label + " (path, blank to skip)",
		})
		if err != nil {
			return err
		}
		path = strings.TrimSpace(path)
		if path == "" {
			return nil
		}
		data, err := r.readFile(path)
		if err != nil {
			return fmt.Errorf("tui: read %s: %w", path, err)
		}
		return f.Attach(form.File{
			FieldName:   field.Name,
			Filename:    filepath.Base(path),
			ContentType: mime.TypeByExtension(filepath.Ext(path)),
			Data:        data,
		})

	case model.FieldTypeAutocomplete:
		value, err := r.driver.Input(ctx, InputConfig{
			Message:   field.Label,
			Default:   field.Value,
			Validator: requiredValidator(true),
			Suggest:   f.SuggestCompany,
		})
		if err != nil {
			return err
		}
		return f.Set(field.Name, strings.TrimSpace(value))

	default:
		value, err := r.promptValue(ctx, field, required(sec, field))
		if err != nil {
			return err
		}
		return f.Set(field.Name, value)
	}
}

func (r *Runner) promptGroup(ctx context.Context, f *form.Form, m *group.Manager) error {
	title := m.Schema().Title
	for i := 0; ; i++ {
		entry := m.Entry(i)
		if entry == nil {
			break
		}
		if err := r.driver.Info(ctx, r.theme.InfoPrefix+fmt.Sprintf("%s %d", title, i+1)); err != nil {
			return err
		}
		// the catalog loads in the background; pick up names that arrived
		// since the section was chosen.
		f.Refresh(ctx, f.Active().ID)
		for _, field := range entry.Fields {
			value, err := r.promptValue(ctx, field, field.Required)
			if err != nil {
				return err
			}
			field.Value = value
		}

		if m.Count() > i+1 {
			continue
		}
		if m.Count() >= m.Capacity() {
			return r.driver.Info(ctx, r.theme.InfoPrefix+fmt.Sprintf("Maximum of %d %ss reached.", m.Capacity(), strings.ToLower(title)))
		}
		more, err := r.driver.Confirm(ctx, ConfirmConfig{
			Message: fmt.Sprintf("Add another %s?", strings.ToLower(title)),
		})
		if err != nil {
			return err
		}
		if !more {
			break
		}
		if _, err := f.AddEntry(m.Kind()); err != nil {
			return err
		}
	}
	return nil
}

// promptValue asks for a single value: a select for option fields, free text
// otherwise.
func (r *Runner) promptValue(ctx context.Context, field *model.Field, mandatory bool) (string, error) {
	if field.Type == model.FieldTypeSelect {
		labels, values := optionLists(field.Options)
		if len(values) == 0 {
			return "", nil
		}
		if field.Source != "" && !field.Populated {
			if err := r.driver.Info(ctx, r.theme.ErrorPrefix+field.Label+" list unavailable, leaving it empty."); err != nil {
				return "", err
			}
			return "", nil
		}
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      field.Label,
			Options:      labels,
			DefaultIndex: indexOf(values, field.Value),
			PageSize:     selectPageSize,
		})
		if err != nil {
			return "", err
		}
		if idx < 0 || idx >= len(values) {
			return "", ErrNoChoice
		}
		return values[idx], nil
	}

	value, err := r.driver.Input(ctx, InputConfig{
		Message:   field.Label,
		Default:   field.Value,
		Validator: requiredValidator(mandatory),
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

// Notifier reports submission outcomes through the prompt driver.
func (r *Runner) Notifier(ctx context.Context) *Notifier {
	return &Notifier{ctx: ctx, driver: r.driver, theme: r.theme}
}

// Notifier satisfies submission.Notifier.
type Notifier struct {
	ctx    context.Context
	driver PromptDriver
	theme  Theme
}

func (n *Notifier) Success(msg string) {
	_ = n.driver.Info(n.ctx, n.theme.InfoPrefix+msg)
}

func (n *Notifier) Failure(msg string) {
	_ = n.driver.Info(n.ctx, n.theme.ErrorPrefix+msg)
}

func optionLists(options []model.Option) (labels, values []string) {
	for _, opt := range options {
		labels = append(labels, opt.Label)
		values = append(values, opt.Value)
	}
	return labels, values
}

func requiredValidator(mandatory bool) func(string) error {
	if !mandatory {
		return nil
	}
	return func(v string) error {
		if strings.TrimSpace(v) == "" {
			return errors.New("this field is required")
		}
		return nil
	}
}

func required(sec *form.Section, field *model.Field) bool {
	return field.Required || field.Metadata[form.MetaRequiredWhen] != "" && sec.ConditionHolds(field)
}
