// Package html renders the registration form and the stored entries table as
// server-side HTML using pongo2 templates. The page works without scripts:
// section switches and group additions post back to the form route, while
// the final submit posts to the submission endpoint in a new browsing
// context so the receipt opens beside the form.
package html
