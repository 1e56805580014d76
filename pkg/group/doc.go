// Package group manages bounded, ordered lists of structured sub-entries such
// as the clients and vehicles of a registration.
//
// A Manager starts with exactly one entry and grows one entry per Add up to
// its capacity (10 by default). Reset truncates back to the first entry. Each
// entry is built from the group's schema, so rendering and serialisation both
// read the same bound fields.
package group
