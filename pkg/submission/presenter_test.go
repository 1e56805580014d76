package submission_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/goliatone/go-parkentry/pkg/submission"
)

func TestFilePresenter_WritesAndOpensDocument(t *testing.T) {
	var openedPath string
	p := &submission.FilePresenter{
		Dir:    t.TempDir(),
		Opener: func(path string) error { openedPath = path; return nil },
	}

	view, err := p.Open(context.Background(), submission.Document{Data: []byte("%PDF-1.4"), Filename: "receipt.pdf"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, err := os.ReadFile(openedPath)
	if err != nil {
		t.Fatalf("read materialised document: %v", err)
	}
	if string(data) != "%PDF-1.4" {
		t.Fatalf("unexpected document contents %q", data)
	}
	select {
	case <-view.Ready():
	default:
		t.Fatalf("expected view to be ready after open")
	}
	if err := view.Print(context.Background()); !errors.Is(err, submission.ErrPrintBlocked) {
		t.Fatalf("expected ErrPrintBlocked without a print command, got %v", err)
	}
}
