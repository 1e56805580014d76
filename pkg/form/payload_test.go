package form_test

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-parkentry/pkg/form"
)

func TestPayload_WriteMultipartKeepsOrder(t *testing.T) {
	p := form.NewPayload()
	p.Add("form_type", "tourist")
	p.AddAll("client_name[]", []string{"Ann", "Ben"})
	p.AddAll("car_reg[]", nil)
	p.Attach(form.File{FieldName: "group_upload", Filename: `list "a".csv`, ContentType: "text/csv", Data: []byte("x,y")})

	if diff := cmp.Diff([]string{"form_type", "client_name[]", "car_reg[]"}, p.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}

	var buf bytes.Buffer
	contentType, err := p.WriteMultipart(&buf)
	if err != nil {
		t.Fatalf("write multipart: %v", err)
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		t.Fatalf("parse content type: %v", err)
	}

	type part struct {
		Name, File, Body string
	}
	var got []part
	reader := multipart.NewReader(&buf, params["boundary"])
	for {
		next, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("next part: %v", err)
		}
		body, _ := io.ReadAll(next)
		got = append(got, part{Name: next.FormName(), File: next.FileName(), Body: string(body)})
	}

	want := []part{
		{Name: "form_type", Body: "tourist"},
		{Name: "client_name[]", Body: "Ann"},
		{Name: "client_name[]", Body: "Ben"},
		{Name: "group_upload", File: `list "a".csv`, Body: "x,y"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("parts mismatch (-want +got):\n%s", diff)
	}
}
