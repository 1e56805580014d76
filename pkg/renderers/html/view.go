package html

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-parkentry/pkg/form"
	"github.com/goliatone/go-parkentry/pkg/group"
	"github.com/goliatone/go-parkentry/pkg/model"
)

// Default form targets.
const (
	DefaultSubmitURL = "/submit"
	DefaultFormURL   = "/form"
)

// Meta carries page chrome and feedback that does not live on the form.
type Meta struct {
	Authority string
	Park      string
	SubmitURL string
	FormURL   string
	Message   string
	Errors    []string
}

// Page is the template view of the registration form.
type Page struct {
	Title     string        `json:"title"`
	Authority string        `json:"authority"`
	Park      string        `json:"park"`
	SubmitURL string        `json:"submit_url"`
	FormURL   string        `json:"form_url"`
	Message   string        `json:"message,omitempty"`
	Errors    []string      `json:"errors,omitempty"`
	Sections  []SectionView `json:"sections"`
	Active    SectionView   `json:"active"`
}

type SectionView struct {
	ID     string      `json:"id"`
	Title  string      `json:"title"`
	Active bool        `json:"active"`
	Fields []FieldView `json:"fields,omitempty"`
	Groups []GroupView `json:"groups,omitempty"`
}

type FieldView struct {
	Name        string       `json:"name"`
	Entry       string       `json:"entry"`
	Type        string       `json:"type"`
	Label       string       `json:"label"`
	Placeholder string       `json:"placeholder,omitempty"`
	Required    bool         `json:"required"`
	Hidden      bool         `json:"hidden"`
	Value       string       `json:"value"`
	Options     []OptionView `json:"options,omitempty"`
	Suggestions []string     `json:"suggestions,omitempty"`
}

type OptionView struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

type GroupView struct {
	Kind     string      `json:"kind"`
	Title    string      `json:"title"`
	Count    int         `json:"count"`
	Capacity int         `json:"capacity"`
	Full     bool        `json:"full"`
	Entries  []EntryView `json:"entries"`
}

type EntryView struct {
	Number int         `json:"number"`
	Fields []FieldView `json:"fields"`
}

// BuildPage converts the form into its template view. Only the active
// section carries fields so the browser serialises nothing else.
func BuildPage(f *form.Form, meta Meta) Page {
	page := Page{
		Title:     "Park Entry Registration",
		Authority: meta.Authority,
		Park:      meta.Park,
		SubmitURL: orDefault(meta.SubmitURL, DefaultSubmitURL),
		FormURL:   orDefault(meta.FormURL, DefaultFormURL),
		Message:   meta.Message,
		Errors:    append([]string{}, meta.Errors...),
	}

	active := f.Active()
	for _, sec := range f.Sections() {
		view := SectionView{
			ID:     string(sec.ID),
			Title:  sec.ID.Title(),
			Active: sec == active,
		}
		page.Sections = append(page.Sections, view)
	}

	page.Active = SectionView{
		ID:     string(active.ID),
		Title:  active.ID.Title(),
		Active: true,
	}
	for _, field := range active.Fields {
		view := fieldView(field, "")
		view.Hidden = !active.ConditionHolds(field)
		if active.Company != nil && field.Name == active.Company.Name() {
			view.Suggestions = active.Company.Suggestions()
			if len(view.Suggestions) == 0 {
				view.Suggestions = active.Company.Candidates()
			}
		}
		page.Active.Fields = append(page.Active.Fields, view)
	}
	for _, m := range active.Groups {
		page.Active.Groups = append(page.Active.Groups, groupView(m))
	}
	return page
}

func groupView(m *group.Manager) GroupView {
	view := GroupView{
		Kind:     string(m.Kind()),
		Title:    m.Schema().Title,
		Count:    m.Count(),
		Capacity: m.Capacity(),
		Full:     m.Count() >= m.Capacity(),
	}
	for _, entry := range m.Entries() {
		ev := EntryView{Number: entry.Index + 1}
		for _, field := range entry.Fields {
			ev.Fields = append(ev.Fields, fieldView(field, strconv.Itoa(entry.Index)))
		}
		view.Entries = append(view.Entries, ev)
	}
	return view
}

func fieldView(field *model.Field, entry string) FieldView {
	view := FieldView{
		Name:        field.Name,
		Entry:       entry,
		Type:        string(field.Type),
		Label:       field.Label,
		Placeholder: field.Placeholder,
		Required:    field.Required,
		Value:       field.Value,
	}
	for _, opt := range field.Options {
		view.Options = append(view.Options, OptionView{
			Value:    opt.Value,
			Label:    opt.Label,
			Selected: selected(field, opt.Value),
		})
	}
	return view
}

func selected(field *model.Field, value string) bool {
	if field.IsMultiValued() {
		for _, v := range field.Values {
			if v == value {
				return true
			}
		}
		return false
	}
	return field.Value == value
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
