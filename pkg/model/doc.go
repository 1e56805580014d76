// Package model defines the form vocabulary shared by every surface: fields
// and their options, the three registration sections, and the schemas of the
// repeated client and vehicle groups.
//
// Renderers consume these types directly; the form package owns instances and
// the submission package serialises them.
package model
