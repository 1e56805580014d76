package group

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/goliatone/go-parkentry/pkg/model"
)

// DefaultCapacity is the maximum number of entries a group holds.
const DefaultCapacity = 10

// ErrCapacityExceeded is returned by Add when the group is full.
var ErrCapacityExceeded = errors.New("group: capacity exceeded")

// CapacityError carries the group kind and limit of a rejected Add.
type CapacityError struct {
	Kind  model.GroupKind
	Limit int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("group: %s capacity of %d entries reached", e.Kind, e.Limit)
}

func (e *CapacityError) Unwrap() error { return ErrCapacityExceeded }

// Populator fills catalog-backed fields of a freshly built entry. It must be
// idempotent per field.
type Populator interface {
	Populate(field *model.Field) bool
}

// PopulatorFunc adapts a function into a Populator.
type PopulatorFunc func(field *model.Field) bool

// Populate delegates to the underlying function.
func (fn PopulatorFunc) Populate(field *model.Field) bool { return fn(field) }

// Entry is one structured record of a group.
type Entry struct {
	Index  int
	Fields []*model.Field
}

// Field returns the entry field with the given wire name.
func (e *Entry) Field(name string) *model.Field {
	if e == nil {
		return nil
	}
	for _, field := range e.Fields {
		if field.Name == name {
			return field
		}
	}
	return nil
}

type Option func(*Manager)

// WithCapacity overrides the entry limit. Values below 1 are ignored.
func WithCapacity(n int) Option {
	return func(m *Manager) {
		if n >= 1 {
			m.capacity = n
		}
	}
}

// WithPopulator sets the catalog populator applied to new entries.
func WithPopulator(p Populator) Option {
	return func(m *Manager) {
		m.populator = p
	}
}

// WithLogger overrides the manager logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// Manager owns the ordered entries of one repeated group. Add and Reset are
// the only mutators; the entry count is always len(entries).
type Manager struct {
	schema    model.Schema
	capacity  int
	populator Populator
	logger    *slog.Logger

	entries []*Entry
}

// New constructs a manager for kind holding its initial entry.
func New(kind model.GroupKind, opts ...Option) (*Manager, error) {
	schema, ok := model.SchemaFor(kind)
	if !ok {
		return nil, fmt.Errorf("group: unknown kind %q", kind)
	}
	return NewWithSchema(schema, opts...), nil
}

// NewWithSchema constructs a manager around an explicit schema.
func NewWithSchema(schema model.Schema, opts ...Option) *Manager {
	m := &Manager{
		schema:   schema,
		capacity: DefaultCapacity,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(m)
	}
	m.entries = []*Entry{m.build(0)}
	return m
}

// Kind returns the group kind.
func (m *Manager) Kind() model.GroupKind { return m.schema.Kind }

// Schema returns the entry schema.
func (m *Manager) Schema() model.Schema { return m.schema }

// Capacity returns the entry limit.
func (m *Manager) Capacity() int { return m.capacity }

// Count returns the number of entries.
func (m *Manager) Count() int { return len(m.entries) }

// Entries returns the entries in order. Callers may edit field values but must
// not reorder or resize the slice.
func (m *Manager) Entries() []*Entry {
	return append([]*Entry{}, m.entries...)
}

// Entry returns the entry at index or nil.
func (m *Manager) Entry(index int) *Entry {
	if index < 0 || index >= len(m.entries) {
		return nil
	}
	return m.entries[index]
}

// Add appends an empty entry, or fails with a *CapacityError when the group
// already holds Capacity entries.
func (m *Manager) Add() (*Entry, error) {
	if len(m.entries) >= m.capacity {
		return nil, &CapacityError{Kind: m.schema.Kind, Limit: m.capacity}
	}
	entry := m.build(len(m.entries))
	m.entries = append(m.entries, entry)
	m.logger.Debug("group entry added", "kind", m.schema.Kind, "count", len(m.entries))
	return entry, nil
}

// Reset drops every entry but the first and clears its values.
func (m *Manager) Reset() {
	first := m.entries[0]
	for _, field := range first.Fields {
		field.Clear()
	}
	m.entries = m.entries[:1:1]
}

// Populate runs the populator over every entry, for example after the catalog
// finished loading. Returns how many fields were populated.
func (m *Manager) Populate(p Populator) int {
	if p == nil {
		return 0
	}
	count := 0
	for _, entry := range m.entries {
		for _, field := range entry.Fields {
			if field.Source != "" && p.Populate(field) {
				count++
			}
		}
	}
	return count
}

// Fields returns every field of every entry in document order.
func (m *Manager) Fields() []*model.Field {
	out := make([]*model.Field, 0, len(m.entries)*len(m.schema.Fields))
	for _, entry := range m.entries {
		out = append(out, entry.Fields...)
	}
	return out
}

// Column returns one value per entry for the named field.
func (m *Manager) Column(name string) []string {
	out := make([]string, 0, len(m.entries))
	for _, entry := range m.entries {
		if field := entry.Field(name); field != nil {
			out = append(out, field.Value)
		}
	}
	return out
}

// Restore rebuilds entries from posted column values. The entry count is the
// longest column, clamped to [1, Capacity]. Extra values are dropped.
func (m *Manager) Restore(values map[string][]string) {
	rows := 1
	for _, name := range m.schema.ColumnNames() {
		if n := len(values[name]); n > rows {
			rows = n
		}
	}
	if rows > m.capacity {
		m.logger.Warn("restored group exceeds capacity", "kind", m.schema.Kind, "rows", rows, "capacity", m.capacity)
		rows = m.capacity
	}

	m.Reset()
	for len(m.entries) < rows {
		m.entries = append(m.entries, m.build(len(m.entries)))
	}
	for i, entry := range m.entries {
		for _, field := range entry.Fields {
			column := values[field.Name]
			if i < len(column) {
				field.Value = column[i]
			}
		}
	}
}

func (m *Manager) build(index int) *Entry {
	entry := &Entry{
		Index:  index,
		Fields: make([]*model.Field, 0, len(m.schema.Fields)),
	}
	for _, def := range m.schema.Fields {
		field := def.Clone()
		field.Clear()
		if field.Source != "" && m.populator != nil {
			m.populator.Populate(&field)
		}
		entry.Fields = append(entry.Fields, &field)
	}
	return entry
}
