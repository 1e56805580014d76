// Package form owns a complete visitor registration: the tourist, transit and
// student sections, the client and vehicle groups of the tourist section, the
// company autocomplete, and attached files.
//
// Only the active section is validated and serialised. Payload builds a fresh
// multi-valued payload on every call with the section discriminator under
// "form_type", each scalar field, and one "[]" column per group field holding
// one value per entry in entry order.
package form
