// Package pongo adapts pongo2 to the template.TemplateRenderer contract.
//
// Data passed to templates is normalised through JSON so struct views expose
// their json tag names. Filters live in pongo2's process-wide registry; the
// engine registers "trim" and "domid" on first construction.
package pongo
