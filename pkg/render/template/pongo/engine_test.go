package pongo_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-parkentry/pkg/render/template/pongo"
)

func newEngine(t *testing.T, opts ...pongo.Option) *pongo.Engine {
	t.Helper()
	files := fstest.MapFS{
		"hello.tpl":      {Data: []byte("Hello {{ name|trim }}")},
		"use-global.tpl": {Data: []byte("{{ park }}")},
		"field.tpl":      {Data: []byte(`<input id="{{ name|domid:index }}" name="{{ name }}">`)},
		"use-filter.tpl": {Data: []byte("{{ name|shout }}")},
	}
	engine, err := pongo.New(append([]pongo.Option{pongo.WithFS(files)}, opts...)...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestEngine_RenderTemplateWritesToOutputs(t *testing.T) {
	engine := newEngine(t)

	var buf bytes.Buffer
	got, err := engine.RenderTemplate("hello", map[string]any{"name": "  Ann "}, &buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "Hello Ann" || buf.String() != got {
		t.Fatalf("unexpected output %q / %q", got, buf.String())
	}
}

func TestEngine_StructDataUsesJSONNames(t *testing.T) {
	engine := newEngine(t)

	type field struct {
		Name  string `json:"name"`
		Index int    `json:"index"`
	}
	got, err := engine.RenderTemplate("field", field{Name: "client_name[]", Index: 2})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := `<input id="client_name-2" name="client_name[]">`
	if got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
}

func TestEngine_GlobalData(t *testing.T) {
	engine := newEngine(t, pongo.WithGlobalData(map[string]any{"park": "Murchison Falls"}))

	got, err := engine.RenderTemplate("use-global", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "Murchison Falls" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestEngine_RegisterFilter(t *testing.T) {
	engine := newEngine(t)
	err := engine.RegisterFilter("shout", func(input any, _ any) (any, error) {
		return fmt.Sprintf("%s!", strings.ToUpper(fmt.Sprint(input))), nil
	})
	if err != nil {
		t.Fatalf("register filter: %v", err)
	}

	got, err := engine.Render("use-filter", map[string]any{"name": "tulavo"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "TULAVO!" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestEngine_RenderInlineContent(t *testing.T) {
	engine := newEngine(t)
	got, err := engine.Render("{{ a }}-{{ b }}", map[string]any{"a": 1, "b": "x"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "1-x" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestNew_RequiresTemplateSource(t *testing.T) {
	if _, err := pongo.New(); err == nil {
		t.Fatalf("expected error without templates")
	}
}

func TestEngine_BaseDirOverridesSingleTemplate(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "field.tpl"), []byte(`<select name="{{ name }}"></select>`), 0o600); err != nil {
		t.Fatalf("write override: %v", err)
	}
	files := fstest.MapFS{
		"hello.tpl": {Data: []byte("Hello {{ name }}")},
		"page.tpl":  {Data: []byte(`<form>{% include "field.tpl" %}</form>`)},
		"field.tpl": {Data: []byte(`<input name="{{ name }}">`)},
	}
	engine, err := pongo.New(pongo.WithFS(files), pongo.WithBaseDir(dir))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	cases := []struct {
		name string
		want string
	}{
		{name: "hello", want: "Hello Ann"},
		{name: "field", want: `<select name="Ann"></select>`},
		{name: "page", want: `<form><select name="Ann"></select></form>`},
	}
	for _, tc := range cases {
		got, err := engine.RenderTemplate(tc.name, map[string]any{"name": "Ann"})
		if err != nil {
			t.Fatalf("render %s: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: want %q, got %q", tc.name, tc.want, got)
		}
	}

	if _, err := engine.RenderTemplate("missing", nil); err == nil {
		t.Fatalf("expected an error for a template in neither source")
	}
}

func TestEngine_MissingBaseDirFails(t *testing.T) {
	_, err := pongo.New(pongo.WithBaseDir(filepath.Join(t.TempDir(), "absent")))
	if err == nil {
		t.Fatalf("expected an error for a missing template dir")
	}
}
