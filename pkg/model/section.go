package model

import (
	"fmt"
	"strings"
)

// Section identifies one of the top-level form variants.
type Section string

const (
	SectionTourist Section = "tourist"
	SectionTransit Section = "transit"
	SectionStudent Section = "student"
)

// Sections lists every section in display order.
func Sections() []Section {
	return []Section{SectionTourist, SectionTransit, SectionStudent}
}

// Title returns the human readable section name.
func (s Section) Title() string {
	switch s {
	case SectionTourist:
		return "Tourist"
	case SectionTransit:
		return "Transit"
	case SectionStudent:
		return "Student"
	default:
		return string(s)
	}
}

// Valid reports whether s is a known section.
func (s Section) Valid() bool {
	for _, candidate := range Sections() {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSection normalises raw discriminator input.
func ParseSection(raw string) (Section, error) {
	s := Section(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("model: unknown section %q", raw)
	}
	return s, nil
}
