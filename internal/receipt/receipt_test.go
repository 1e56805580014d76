package receipt

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/benedoc-inc/pdfer/writer"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-parkentry/internal/registration"
	"github.com/goliatone/go-parkentry/pkg/model"
)

var header = Header{Authority: "Uganda Wildlife Authority", Park: "Murchison Falls National Park"}

func assertPDF(t *testing.T, out []byte) {
	t.Helper()
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("expected PDF header, got %q", out[:min(len(out), 16)])
	}
	if !bytes.Contains(out[max(0, len(out)-32):], []byte("%%EOF")) {
		t.Fatalf("expected PDF trailer")
	}
}

func TestRender_TouristReceipt(t *testing.T) {
	reg := &registration.Registration{
		ID:         "3f2c",
		Category:   model.SectionTourist,
		Clients:    []registration.Client{{Name: "Ann (guide)", Nationality: "Kenya"}},
		Vehicles:   []registration.Vehicle{{Type: "Land Cruiser", Reg: "UAX 001"}},
		Activities: []string{"Game Drive"},
	}
	out, err := Render(header, reg, "20260301grouplist.csv")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	assertPDF(t, out)
}

func TestRender_ManyClientsSpansPages(t *testing.T) {
	reg := &registration.Registration{Category: model.SectionTourist}
	for i := 0; i < 80; i++ {
		reg.Clients = append(reg.Clients, registration.Client{Name: fmt.Sprintf("Client %d", i)})
	}
	out, err := Render(header, reg, "")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	assertPDF(t, out)
	if n := bytes.Count(out, []byte("/Type/Page/")); n < 2 {
		t.Fatalf("expected at least two pages, got %d", n)
	}
}

func TestRender_NilRegistration(t *testing.T) {
	if _, err := Render(header, nil, ""); err == nil {
		t.Fatalf("expected error")
	}
}

func TestFit(t *testing.T) {
	if got := fit("Short", 100, 10); got != "Short" {
		t.Fatalf("unexpected %q", got)
	}
	if got := fit("A very long company name indeed", 50, 10); got != "A very ..." {
		t.Fatalf("unexpected %q", got)
	}
}

func TestEncodeText_WindowsCodePage(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "Kenya", want: "Kenya"},
		{in: "Côte d'Ivoire", want: "C\xf4te d'Ivoire"},
		{in: "São Tomé and Príncipe", want: "S\xe3o Tom\xe9 and Pr\xedncipe"},
		{in: "Curaçao – €5", want: "Cura\xe7ao \x96 \x805"},
		{in: "Kayseri Şehir", want: "Kayseri Sehir"},
		{in: "Ann 張", want: "Ann ?"},
	}
	for _, tc := range cases {
		if diff := cmp.Diff([]byte(tc.want), encodeText(tc.in)); diff != "" {
			t.Fatalf("%q mismatch (-want +got):\n%s", tc.in, diff)
		}
	}
}

func TestShowText_WritesHexString(t *testing.T) {
	content := writer.NewContentStream()
	showText(content, "Curaçao (N)")
	want := "<43757261E7616F20284E29> Tj\n"
	if got := content.String(); got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
}

func TestRender_NonASCIINames(t *testing.T) {
	reg := &registration.Registration{
		Category:    model.SectionTourist,
		CompanyName: "Société Safaris",
		Clients: []registration.Client{
			{Name: "Zoë Ørsted", Nationality: "Côte d'Ivoire"},
			{Name: "João", Nationality: "São Tomé and Príncipe"},
		},
		Activities: []string{"Game Drive"},
	}
	out, err := Render(header, reg, "")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	assertPDF(t, out)
	if !bytes.Contains(out, []byte("/BaseFont/Helvetica/Encoding/WinAnsiEncoding")) {
		t.Fatalf("expected WinAnsiEncoding on the receipt font")
	}
}
