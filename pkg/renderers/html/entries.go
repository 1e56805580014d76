package html

import (
	"time"

	"github.com/goliatone/go-parkentry/internal/store"
)

// EntriesPage is the template view of the stored registrations table.
type EntriesPage struct {
	Title string     `json:"title"`
	Rows  []EntryRow `json:"rows"`
}

type EntryRow struct {
	ID                int64  `json:"id"`
	SubmissionID      string `json:"submission_id"`
	Category          string `json:"category"`
	ClientName        string `json:"client_name"`
	ClientContact     string `json:"client_contact"`
	ClientNationality string `json:"client_nationality"`
	CarType           string `json:"car_type"`
	CarReg            string `json:"car_reg"`
	DriverName        string `json:"driver_name"`
	DriverPhone       string `json:"driver_phone"`
	Activities        string `json:"activities"`
	GroupFile         string `json:"group_file"`
	GroupFileURL      string `json:"group_file_url"`
	CreatedAt         string `json:"created_at"`
}

// BuildEntries converts stored rows into their table view. link resolves a
// stored group file name to a download URL and may be nil.
func BuildEntries(entries []store.Entry, link func(name string) string) EntriesPage {
	page := EntriesPage{Title: "Park Entries", Rows: make([]EntryRow, 0, len(entries))}
	for _, e := range entries {
		row := EntryRow{
			ID:                e.ID,
			SubmissionID:      e.SubmissionID,
			Category:          e.Category,
			ClientName:        e.ClientName,
			ClientContact:     e.ClientContact,
			ClientNationality: e.ClientNationality,
			CarType:           e.CarType,
			CarReg:            e.CarReg,
			DriverName:        e.DriverName,
			DriverPhone:       e.DriverPhone,
			Activities:        e.Activities,
			GroupFile:         e.GroupFile,
			CreatedAt:         e.CreatedAt.UTC().Format(time.DateTime),
		}
		if e.GroupFile != "" && link != nil {
			row.GroupFileURL = link(e.GroupFile)
		}
		page.Rows = append(page.Rows, row)
	}
	return page
}
