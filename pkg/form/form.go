package form

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/goliatone/go-parkentry/pkg/autocomplete"
	"github.com/goliatone/go-parkentry/pkg/group"
	"github.com/goliatone/go-parkentry/pkg/model"
	"github.com/goliatone/go-parkentry/pkg/section"
)

// ErrUnknownField is returned when a value targets a field the active section
// does not carry.
var ErrUnknownField = errors.New("form: unknown field")

// MissingFieldsError lists required fields left empty in the active section.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "form: missing required fields: " + strings.Join(e.Fields, ", ")
}

// Catalog is the subset of the country catalog the form relies on. Prefetch
// must not wait for the load; fields it misses are filled on a later refresh.
type Catalog interface {
	Prefetch(ctx context.Context)
	Populate(field *model.Field) bool
}

// Section is one registration variant with its scalar fields and groups.
type Section struct {
	ID      model.Section
	Fields  []*model.Field
	Groups  []*group.Manager
	Company *autocomplete.Field

	files map[string]File
}

// Field returns the scalar field named name.
func (s *Section) Field(name string) *model.Field {
	for _, field := range s.Fields {
		if field.Name == name {
			return field
		}
	}
	return nil
}

// Group returns the manager for kind, or nil when the section has no such
// group.
func (s *Section) Group(kind model.GroupKind) *group.Manager {
	for _, m := range s.Groups {
		if m.Kind() == kind {
			return m
		}
	}
	return nil
}

// CatalogFields returns every catalog-backed field of the section, including
// those inside group entries.
func (s *Section) CatalogFields() []*model.Field {
	var out []*model.Field
	for _, field := range s.Fields {
		if field.Source != "" {
			out = append(out, field)
		}
	}
	for _, m := range s.Groups {
		for _, field := range m.Fields() {
			if field.Source != "" {
				out = append(out, field)
			}
		}
	}
	return out
}

// ConditionHolds reports whether the requiredWhen rule of field is satisfied
// by the section's current values. Fields without a rule always hold; they
// are shown and collected unconditionally.
func (s *Section) ConditionHolds(field *model.Field) bool {
	rule := field.Metadata[MetaRequiredWhen]
	if rule == "" {
		return true
	}
	name, want, ok := strings.Cut(rule, "=")
	if !ok {
		return true
	}
	other := s.Field(name)
	return other != nil && other.Value == want
}

// File returns the file attached under name.
func (s *Section) File(name string) (File, bool) {
	f, ok := s.files[name]
	return f, ok
}

func (s *Section) reset() {
	for _, field := range s.Fields {
		field.Clear()
	}
	if s.Company != nil {
		s.Company.Reset()
	}
	for _, m := range s.Groups {
		m.Reset()
	}
	s.files = nil
}

type config struct {
	catalog   Catalog
	logger    *slog.Logger
	companies []string
	capacity  int
	initial   model.Section
}

type Option func(*config)

// WithCatalog wires the country catalog used by nationality selects.
func WithCatalog(c Catalog) Option {
	return func(cfg *config) {
		cfg.catalog = c
	}
}

// WithLogger overrides the form logger.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithCompanies replaces the company autocomplete candidates.
func WithCompanies(companies []string) Option {
	return func(cfg *config) {
		cfg.companies = append([]string{}, companies...)
	}
}

// WithGroupCapacity overrides the repeated group capacity.
func WithGroupCapacity(n int) Option {
	return func(cfg *config) {
		cfg.capacity = n
	}
}

// WithInitialSection selects the section shown after construction.
func WithInitialSection(s model.Section) Option {
	return func(cfg *config) {
		cfg.initial = s
	}
}

// Form is the visitor registration form: three sections behind a switch, one
// of them active.
type Form struct {
	sections []*Section
	sw       *section.Switch
	catalog  Catalog
	logger   *slog.Logger
}

// New builds the registration form and selects the initial section, which also
// starts a first catalog load without waiting for it.
func New(ctx context.Context, opts ...Option) (*Form, error) {
	cfg := config{
		logger:    slog.Default(),
		companies: autocomplete.TourCompanies,
		capacity:  group.DefaultCapacity,
		initial:   model.SectionTourist,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	f := &Form{
		catalog: cfg.catalog,
		logger:  cfg.logger,
	}

	groupOpts := []group.Option{group.WithCapacity(cfg.capacity), group.WithLogger(cfg.logger)}
	if cfg.catalog != nil {
		groupOpts = append(groupOpts, group.WithPopulator(prefetchingPopulator(ctx, cfg.catalog)))
	}

	for _, id := range model.Sections() {
		sec := &Section{ID: id}
		for _, def := range scalarFields(id) {
			field := def.Clone()
			sec.Fields = append(sec.Fields, &field)
			if field.Type == model.FieldTypeAutocomplete {
				sec.Company = autocomplete.New(field.Name, cfg.companies)
			}
		}
		for _, kind := range groupKinds(id) {
			m, err := group.New(kind, groupOpts...)
			if err != nil {
				return nil, fmt.Errorf("form: build %s group: %w", kind, err)
			}
			sec.Groups = append(sec.Groups, m)
		}
		f.sections = append(f.sections, sec)
	}

	f.sw = section.New(model.Sections(), section.WithRefresher(section.RefresherFunc(f.refresh)))
	if err := f.sw.Select(ctx, cfg.initial); err != nil {
		return nil, fmt.Errorf("form: initial section: %w", err)
	}
	return f, nil
}

// Sections returns every section in display order.
func (f *Form) Sections() []*Section {
	return append([]*Section{}, f.sections...)
}

// Section returns the section with id.
func (f *Form) Section(id model.Section) *Section {
	for _, s := range f.sections {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// Active returns the visible section.
func (f *Form) Active() *Section {
	return f.Section(f.sw.Active())
}

// Visible reports whether the section is shown.
func (f *Form) Visible(id model.Section) bool {
	return f.sw.Visible(id)
}

// Select switches the visible section.
func (f *Form) Select(ctx context.Context, id model.Section) error {
	return f.sw.Select(ctx, id)
}

// Refresh starts a catalog load when none has succeeded yet and populates the
// section's nationality fields from whatever is already loaded. Fields stay
// on their placeholder until a later refresh finds the catalog.
func (f *Form) Refresh(ctx context.Context, id model.Section) {
	f.refresh(ctx, id)
}

func (f *Form) refresh(ctx context.Context, id model.Section) {
	if f.catalog == nil {
		return
	}
	sec := f.Section(id)
	if sec == nil {
		return
	}
	f.catalog.Prefetch(ctx)
	pending := 0
	for _, field := range sec.CatalogFields() {
		if !f.catalog.Populate(field) && !field.Populated {
			pending++
		}
	}
	if pending > 0 {
		f.logger.Debug("nationality options pending", "section", id, "fields", pending)
	}
}

// prefetchingPopulator fills new group entries from the catalog and asks for
// a load when an entry comes up empty.
func prefetchingPopulator(ctx context.Context, c Catalog) group.Populator {
	ctx = context.WithoutCancel(ctx)
	return group.PopulatorFunc(func(field *model.Field) bool {
		if c.Populate(field) {
			return true
		}
		if !field.Populated {
			c.Prefetch(ctx)
		}
		return false
	})
}

// AddEntry appends an entry to the active section's group.
func (f *Form) AddEntry(kind model.GroupKind) (*group.Entry, error) {
	m := f.Active().Group(kind)
	if m == nil {
		return nil, fmt.Errorf("form: section %s has no %s group", f.sw.Active(), kind)
	}
	return m.Add()
}

// Set writes a scalar value in the active section.
func (f *Form) Set(name, value string) error {
	sec := f.Active()
	field := sec.Field(name)
	if field == nil {
		return fmt.Errorf("%w: %q in %s", ErrUnknownField, name, sec.ID)
	}
	if field.IsMultiValued() {
		field.Values = []string{value}
		return nil
	}
	field.Value = value
	if sec.Company != nil && sec.Company.Name() == name {
		sec.Company.Set(value)
	}
	return nil
}

// SetValues writes a multi-valued field in the active section.
func (f *Form) SetValues(name string, values []string) error {
	sec := f.Active()
	field := sec.Field(name)
	if field == nil {
		return fmt.Errorf("%w: %q in %s", ErrUnknownField, name, sec.ID)
	}
	if !field.IsMultiValued() {
		if len(values) > 0 {
			field.Value = values[0]
		}
		return nil
	}
	field.Values = append([]string{}, values...)
	return nil
}

// Attach stores a file for a file field of the active section.
func (f *Form) Attach(file File) error {
	sec := f.Active()
	field := sec.Field(file.FieldName)
	if field == nil || field.Type != model.FieldTypeFile {
		return fmt.Errorf("%w: file field %q in %s", ErrUnknownField, file.FieldName, sec.ID)
	}
	if sec.files == nil {
		sec.files = make(map[string]File)
	}
	sec.files[file.FieldName] = file
	field.Value = file.Filename
	return nil
}

// SuggestCompany feeds query into the company autocomplete of the active
// section and returns the current suggestions.
func (f *Form) SuggestCompany(query string) []string {
	sec := f.Active()
	if sec.Company == nil {
		return nil
	}
	suggestions := sec.Company.Input(query)
	if field := sec.Field(sec.Company.Name()); field != nil {
		field.Value = sec.Company.Value()
	}
	return suggestions
}

// ChooseCompany selects one of the current company suggestions.
func (f *Form) ChooseCompany(suggestion string) error {
	sec := f.Active()
	if sec.Company == nil {
		return fmt.Errorf("%w: company field in %s", ErrUnknownField, sec.ID)
	}
	if err := sec.Company.Select(suggestion); err != nil {
		return err
	}
	if field := sec.Field(sec.Company.Name()); field != nil {
		field.Value = sec.Company.Value()
	}
	return nil
}

// Validate checks required-field presence in the active section only.
func (f *Form) Validate() error {
	sec := f.Active()
	var missing []string
	seen := map[string]struct{}{}
	flag := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		missing = append(missing, name)
	}

	for _, field := range sec.Fields {
		if f.required(sec, field) && isEmpty(field) {
			flag(field.Name)
		}
	}
	for _, m := range sec.Groups {
		for _, field := range m.Fields() {
			if field.Required && isEmpty(field) {
				flag(field.Name)
			}
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &MissingFieldsError{Fields: missing}
}

func (f *Form) required(sec *Section, field *model.Field) bool {
	if field.Required {
		return true
	}
	return field.Metadata[MetaRequiredWhen] != "" && sec.ConditionHolds(field)
}

func isEmpty(field *model.Field) bool {
	if field.IsMultiValued() {
		return len(field.Values) == 0
	}
	return strings.TrimSpace(field.Value) == ""
}

// Payload serialises the active section: the discriminator, every scalar
// field, and one column per group field with one value per entry.
func (f *Form) Payload() *Payload {
	sec := f.Active()
	p := NewPayload()
	p.Add(FieldFormType, string(sec.ID))

	for _, field := range sec.Fields {
		switch field.Type {
		case model.FieldTypeMultiSelect:
			for _, v := range field.Values {
				p.Add(field.Name, v)
			}
		case model.FieldTypeFile:
			if file, ok := sec.files[field.Name]; ok {
				p.Attach(file)
			}
		default:
			p.Add(field.Name, field.Value)
		}
	}
	for _, m := range sec.Groups {
		for _, name := range m.Schema().ColumnNames() {
			p.AddAll(name, m.Column(name))
		}
	}
	return p
}

// Reset clears every scalar field back to its default and resets every group
// of every section to a single empty entry. The selected section stays.
func (f *Form) Reset() {
	for _, sec := range f.sections {
		sec.reset()
	}
}

// Counts returns the entry count per group of the active section.
func (f *Form) Counts() map[model.GroupKind]int {
	out := map[model.GroupKind]int{}
	for _, m := range f.Active().Groups {
		out[m.Kind()] = m.Count()
	}
	return out
}

// Restore rebuilds the form from posted values: the discriminator selects the
// section, scalar and group values are written back, and the catalog refresh
// runs as part of the selection.
func (f *Form) Restore(ctx context.Context, values map[string][]string) error {
	id := model.SectionTourist
	if raw := first(values[FieldFormType]); raw != "" {
		parsed, err := model.ParseSection(raw)
		if err != nil {
			return fmt.Errorf("form: restore: %w", err)
		}
		id = parsed
	}

	sec := f.Section(id)
	sec.reset()
	for _, field := range sec.Fields {
		posted, ok := values[field.Name]
		if !ok {
			continue
		}
		switch field.Type {
		case model.FieldTypeMultiSelect:
			field.Values = append([]string{}, posted...)
		case model.FieldTypeFile:
		default:
			field.Value = first(posted)
		}
	}
	if sec.Company != nil {
		sec.Company.Set(sec.Field(sec.Company.Name()).Value)
	}
	for _, m := range sec.Groups {
		m.Restore(values)
	}
	return f.sw.Select(ctx, id)
}

// Names lists the scalar field names of the active section, sorted; useful
// for prompts and diagnostics.
func (f *Form) Names() []string {
	sec := f.Active()
	out := make([]string, 0, len(sec.Fields))
	for _, field := range sec.Fields {
		out = append(out, field.Name)
	}
	sort.Strings(out)
	return out
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
