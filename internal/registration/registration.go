// Package registration decodes a posted visitor registration, checks that
// required fields are present, and flattens it into stored entry rows.
package registration

import (
	"fmt"
	"html"
	"io"
	"mime/multipart"
	"net/url"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-parkentry/internal/store"
	"github.com/goliatone/go-parkentry/pkg/form"
	"github.com/goliatone/go-parkentry/pkg/model"
)

// MissingFieldError names the first required field found empty.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return "missing field " + e.Field
}

type Client struct {
	Name        string
	Contact     string
	Nationality string
}

type Vehicle struct {
	Type        string
	Reg         string
	DriverName  string
	DriverPhone string
}

// Upload is the optional group list attached to a tourist registration.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Registration is one decoded submission.
type Registration struct {
	ID                 string
	Category           model.Section
	Clients            []Client
	Vehicles           []Vehicle
	Activities         []string
	CompanyOption      string
	CompanyName        string
	Accommodation      string
	OtherAccommodation string
	Institution        string
	Upload             *Upload
}

// Decoder turns posted values into registrations, stripping markup from every
// text value.
type Decoder struct {
	policy *bluemonday.Policy
}

// NewDecoder returns a decoder using bluemonday's strict policy.
func NewDecoder() *Decoder {
	return &Decoder{policy: bluemonday.StrictPolicy()}
}

func (d *Decoder) clean(v string) string {
	return strings.TrimSpace(html.UnescapeString(d.policy.Sanitize(v)))
}

func (d *Decoder) list(values url.Values, key string) []string {
	raw := values[key]
	out := make([]string, len(raw))
	for i, v := range raw {
		out[i] = d.clean(v)
	}
	return out
}

func (d *Decoder) get(values url.Values, key string) string {
	return d.clean(values.Get(key))
}

// DecodeMultipart decodes a parsed multipart form including the optional
// group_upload file.
func (d *Decoder) DecodeMultipart(mf *multipart.Form) (*Registration, error) {
	if mf == nil {
		return nil, fmt.Errorf("registration: empty form")
	}
	reg, err := d.Decode(url.Values(mf.Value))
	if err != nil {
		return nil, err
	}
	headers := mf.File[form.FieldGroupUpload]
	if len(headers) == 0 || headers[0].Filename == "" {
		return reg, nil
	}
	upload, err := readUpload(headers[0])
	if err != nil {
		return nil, err
	}
	reg.Upload = upload
	return reg, nil
}

func readUpload(fh *multipart.FileHeader) (*Upload, error) {
	file, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("registration: open upload: %w", err)
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("registration: read upload: %w", err)
	}
	return &Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// Decode reads the category from form_type (tourist when absent) and the
// fields that category carries.
func (d *Decoder) Decode(values url.Values) (*Registration, error) {
	category := model.SectionTourist
	if raw := d.get(values, form.FieldFormType); raw != "" {
		parsed, err := model.ParseSection(raw)
		if err != nil {
			return nil, fmt.Errorf("registration: %w", err)
		}
		category = parsed
	}

	reg := &Registration{Category: category}
	switch category {
	case model.SectionTransit:
		reg.Clients = []Client{{
			Name:        d.get(values, form.FieldTransitName),
			Nationality: d.get(values, form.FieldTransitNationality),
		}}
		if plate := d.get(values, form.FieldTransitReg); plate != "" {
			reg.Vehicles = []Vehicle{{Reg: plate}}
		}
	case model.SectionStudent:
		reg.Clients = []Client{{
			Name:        d.get(values, form.FieldStudentName),
			Nationality: d.get(values, form.FieldStudentNationality),
		}}
		reg.Institution = d.get(values, form.FieldStudentInstitution)
	default:
		names := d.list(values, "client_name[]")
		contacts := d.list(values, "client_contact[]")
		nationalities := d.list(values, "client_nationality[]")
		for i, name := range names {
			reg.Clients = append(reg.Clients, Client{
				Name:        name,
				Contact:     at(contacts, i),
				Nationality: at(nationalities, i),
			})
		}

		types := d.list(values, "car_type[]")
		regs := d.list(values, "car_reg[]")
		drivers := d.list(values, "driver_name[]")
		phones := d.list(values, "driver_phone[]")
		rows := max(len(types), len(regs), len(drivers), len(phones))
		for i := 0; i < rows; i++ {
			reg.Vehicles = append(reg.Vehicles, Vehicle{
				Type:        at(types, i),
				Reg:         at(regs, i),
				DriverName:  at(drivers, i),
				DriverPhone: at(phones, i),
			})
		}

		reg.Activities = d.list(values, form.FieldActivities)
		reg.CompanyOption = d.get(values, form.FieldCompanyOption)
		reg.CompanyName = d.get(values, form.FieldCompanyName)
		reg.Accommodation = d.get(values, form.FieldAccommodation)
		reg.OtherAccommodation = d.get(values, form.FieldOtherAccommodation)
	}
	return reg, nil
}

// Validate checks presence only: the first required field that is empty is
// reported as a *MissingFieldError.
func (r *Registration) Validate() error {
	switch r.Category {
	case model.SectionTransit:
		if r.clientName() == "" {
			return &MissingFieldError{Field: form.FieldTransitName}
		}
		if len(r.Vehicles) == 0 || r.Vehicles[0].Reg == "" {
			return &MissingFieldError{Field: form.FieldTransitReg}
		}
	case model.SectionStudent:
		if r.clientName() == "" {
			return &MissingFieldError{Field: form.FieldStudentName}
		}
	default:
		if r.CompanyOption == "Company" && r.CompanyName == "" {
			return &MissingFieldError{Field: form.FieldCompanyName}
		}
		if r.Accommodation == "Other" && r.OtherAccommodation == "" {
			return &MissingFieldError{Field: form.FieldOtherAccommodation}
		}
		if len(r.Clients) == 0 {
			return &MissingFieldError{Field: "client_name[]"}
		}
		for _, c := range r.Clients {
			if c.Name == "" {
				return &MissingFieldError{Field: "client_name[]"}
			}
		}
	}
	return nil
}

func (r *Registration) clientName() string {
	if len(r.Clients) == 0 {
		return ""
	}
	return r.Clients[0].Name
}

// HasVehicles reports whether any vehicle carries a type or registration.
func (r *Registration) HasVehicles() bool {
	for _, v := range r.Vehicles {
		if v.Type != "" || v.Reg != "" {
			return true
		}
	}
	return false
}

// ActivitiesText joins activities the way they are stored and printed.
func (r *Registration) ActivitiesText() string {
	return strings.Join(r.Activities, ", ")
}

// Entries flattens the registration into one row per client, at least one.
// Vehicle columns fall back to the first vehicle when there are fewer
// vehicles than clients.
func (r *Registration) Entries(groupFile string, createdAt time.Time) []store.Entry {
	rows := max(1, len(r.Clients))
	out := make([]store.Entry, 0, rows)
	for i := 0; i < rows; i++ {
		var client Client
		if i < len(r.Clients) {
			client = r.Clients[i]
		}
		var vehicle Vehicle
		switch {
		case i < len(r.Vehicles):
			vehicle = r.Vehicles[i]
		case len(r.Vehicles) > 0:
			vehicle = r.Vehicles[0]
		}
		out = append(out, store.Entry{
			SubmissionID:      r.ID,
			Category:          string(r.Category),
			ClientName:        client.Name,
			ClientContact:     client.Contact,
			ClientNationality: client.Nationality,
			CarType:           vehicle.Type,
			CarReg:            vehicle.Reg,
			DriverName:        vehicle.DriverName,
			DriverPhone:       vehicle.DriverPhone,
			Activities:        r.ActivitiesText(),
			GroupFile:         groupFile,
			CreatedAt:         createdAt.UTC(),
		})
	}
	return out
}

func at(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}
