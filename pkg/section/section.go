// Package section implements the mutually exclusive visibility switch over
// the registration sections.
package section

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-parkentry/pkg/model"
)

// ErrUnknownSection is returned when Select receives a section the switch does
// not manage.
var ErrUnknownSection = errors.New("section: unknown section")

// Refresher is invoked after every selection so the shown section can pull
// late-arriving data (the country catalog) into its fields.
type Refresher interface {
	Refresh(ctx context.Context, s model.Section)
}

// RefresherFunc adapts a function into a Refresher.
type RefresherFunc func(ctx context.Context, s model.Section)

// Refresh delegates to the underlying function.
func (fn RefresherFunc) Refresh(ctx context.Context, s model.Section) { fn(ctx, s) }

type Option func(*Switch)

// WithRefresher sets the hook triggered by Select.
func WithRefresher(r Refresher) Option {
	return func(s *Switch) {
		s.refresher = r
	}
}

// Switch shows exactly one section at a time.
type Switch struct {
	order     []model.Section
	visible   map[model.Section]bool
	active    model.Section
	refresher Refresher
}

// New builds a switch over sections with every section hidden. Callers pick
// the initial section with Select.
func New(sections []model.Section, opts ...Option) *Switch {
	s := &Switch{
		order:   append([]model.Section{}, sections...),
		visible: make(map[model.Section]bool, len(sections)),
	}
	for _, section := range sections {
		s.visible[section] = false
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

// Select hides every section except target and shows target. Selecting the
// active section again is allowed and still triggers the refresher.
func (s *Switch) Select(ctx context.Context, target model.Section) error {
	if _, ok := s.visible[target]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSection, target)
	}
	for _, section := range s.order {
		s.visible[section] = section == target
	}
	s.active = target

	if s.refresher != nil {
		s.refresher.Refresh(ctx, target)
	}
	return nil
}

// Active returns the visible section, or "" before the first Select.
func (s *Switch) Active() model.Section { return s.active }

// Visible reports whether section is shown.
func (s *Switch) Visible(section model.Section) bool { return s.visible[section] }

// Sections returns the managed sections in order.
func (s *Switch) Sections() []model.Section {
	return append([]model.Section{}, s.order...)
}
