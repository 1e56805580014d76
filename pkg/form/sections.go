package form

import "github.com/goliatone/go-parkentry/pkg/model"

// Scalar field names shared by the server-side decoder.
const (
	FieldFormType           = "form_type"
	FieldCompanyOption      = "company_option"
	FieldCompanyName        = "company_name"
	FieldActivities         = "activities"
	FieldAccommodation      = "accommodation"
	FieldOtherAccommodation = "other_accommodation"
	FieldGroupUpload        = "group_upload"
	FieldTransitName        = "transit_name"
	FieldTransitNationality = "transit_nationality"
	FieldTransitReg         = "transit_reg"
	FieldStudentName        = "student_name"
	FieldStudentNationality = "student_nationality"
	FieldStudentInstitution = "student_institution"
)

// MetaRequiredWhen makes a field required only when another field of the same
// section holds a given value ("field=value").
const MetaRequiredWhen = "requiredWhen"

// Activities offered on the tourist section.
var Activities = []string{
	"Game Drive",
	"Launch Trip",
	"Nature Walk",
	"Chimpanzee Tracking",
	"Sport Fishing",
	"Top of the Falls",
}

// Accommodations offered on the tourist section. "Other" reveals a free text
// field.
var Accommodations = []string{
	"Paraa Safari Lodge",
	"Chobe Safari Lodge",
	"Baker's Lodge",
	"Murchison River Lodge",
	"Red Chilli Rest Camp",
	"Other",
}

func optionsOf(values []string) []model.Option {
	out := make([]model.Option, 0, len(values))
	for _, v := range values {
		out = append(out, model.Option{Value: v, Label: v})
	}
	return out
}

func nationalityField(name string) model.Field {
	return model.Field{
		Name:    name,
		Type:    model.FieldTypeSelect,
		Label:   "Nationality",
		Source:  model.SourceCountries,
		Options: []model.Option{model.PlaceholderOption("Select nationality")},
	}
}

func scalarFields(s model.Section) []model.Field {
	switch s {
	case model.SectionTourist:
		return []model.Field{
			{
				Name:    FieldCompanyOption,
				Type:    model.FieldTypeSelect,
				Label:   "Booked Through",
				Value:   "Individual",
				Default: "Individual",
				Options: optionsOf([]string{"Individual", "Company"}),
			},
			{
				Name:        FieldCompanyName,
				Type:        model.FieldTypeAutocomplete,
				Label:       "Tour Company",
				Placeholder: "Start typing a company name",
				Metadata:    map[string]string{MetaRequiredWhen: FieldCompanyOption + "=Company"},
			},
			{
				Name:    FieldActivities,
				Type:    model.FieldTypeMultiSelect,
				Label:   "Activities",
				Options: optionsOf(Activities),
			},
			{
				Name:    FieldAccommodation,
				Type:    model.FieldTypeSelect,
				Label:   "Accommodation",
				Options: append([]model.Option{model.PlaceholderOption("Select accommodation")}, optionsOf(Accommodations)...),
			},
			{
				Name:     FieldOtherAccommodation,
				Type:     model.FieldTypeText,
				Label:    "Other Accommodation",
				Metadata: map[string]string{MetaRequiredWhen: FieldAccommodation + "=Other"},
			},
			{
				Name:  FieldGroupUpload,
				Type:  model.FieldTypeFile,
				Label: "Group List (optional)",
			},
		}
	case model.SectionTransit:
		return []model.Field{
			{Name: FieldTransitName, Type: model.FieldTypeText, Label: "Full Name", Required: true},
			nationalityField(FieldTransitNationality),
			{Name: FieldTransitReg, Type: model.FieldTypeText, Label: "Vehicle Reg. Number", Required: true},
		}
	case model.SectionStudent:
		return []model.Field{
			{Name: FieldStudentName, Type: model.FieldTypeText, Label: "Full Name", Required: true},
			nationalityField(FieldStudentNationality),
			{Name: FieldStudentInstitution, Type: model.FieldTypeText, Label: "Institution"},
		}
	default:
		return nil
	}
}

func groupKinds(s model.Section) []model.GroupKind {
	if s == model.SectionTourist {
		return []model.GroupKind{model.GroupClient, model.GroupVehicle}
	}
	return nil
}
