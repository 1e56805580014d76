package form

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"strings"
)

// File is a file part attached to a payload.
type File struct {
	FieldName   string
	Filename    string
	ContentType string
	Data        []byte
}

// Payload is the multi-valued key/value structure sent to the submission
// endpoint. Keys keep first-insertion order and each key keeps value order.
type Payload struct {
	keys   []string
	values map[string][]string
	files  []File
}

// NewPayload returns an empty payload.
func NewPayload() *Payload {
	return &Payload{values: make(map[string][]string)}
}

// Add appends value under key.
func (p *Payload) Add(key, value string) {
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = append(p.values[key], value)
}

// AddAll appends every value under key. An empty slice still registers key.
func (p *Payload) AddAll(key string, values []string) {
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
		p.values[key] = []string{}
	}
	p.values[key] = append(p.values[key], values...)
}

// Attach adds a file part.
func (p *Payload) Attach(file File) {
	p.files = append(p.files, file)
}

// Keys returns the value keys in insertion order.
func (p *Payload) Keys() []string {
	return append([]string{}, p.keys...)
}

// Values returns every value stored under key.
func (p *Payload) Values(key string) []string {
	v := p.values[key]
	if v == nil {
		return nil
	}
	return append([]string{}, v...)
}

// Get returns the first value stored under key.
func (p *Payload) Get(key string) string {
	if v := p.values[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// Files returns the attached file parts.
func (p *Payload) Files() []File {
	return append([]File{}, p.files...)
}

// URLValues converts the value part of the payload into url.Values.
func (p *Payload) URLValues() url.Values {
	out := make(url.Values, len(p.keys))
	for _, key := range p.keys {
		out[key] = append([]string{}, p.values[key]...)
	}
	return out
}

// WriteMultipart encodes the payload as multipart/form-data into w and returns
// the content type carrying the boundary.
func (p *Payload) WriteMultipart(w io.Writer) (string, error) {
	mw := multipart.NewWriter(w)
	for _, key := range p.keys {
		for _, value := range p.values[key] {
			if err := mw.WriteField(key, value); err != nil {
				return "", fmt.Errorf("form: write field %q: %w", key, err)
			}
		}
	}
	for _, file := range p.files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			escapeQuotes(file.FieldName), escapeQuotes(file.Filename)))
		contentType := file.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)

		part, err := mw.CreatePart(header)
		if err != nil {
			return "", fmt.Errorf("form: create file part %q: %w", file.FieldName, err)
		}
		if _, err := io.Copy(part, bytes.NewReader(file.Data)); err != nil {
			return "", fmt.Errorf("form: write file part %q: %w", file.FieldName, err)
		}
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("form: close multipart: %w", err)
	}
	return mw.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
