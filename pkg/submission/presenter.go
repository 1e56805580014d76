package submission

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/cli/browser"
)

// Document is the binary response of a successful submission.
type Document struct {
	Data        []byte
	ContentType string
	Filename    string
}

// View is an opened document.
type View interface {
	// Ready is closed once the view finished loading the document.
	Ready() <-chan struct{}
	// Print asks the view to print. Environments that cannot print return
	// ErrPrintBlocked.
	Print(ctx context.Context) error
}

// Presenter opens a document in a new viewing context.
type Presenter interface {
	Open(ctx context.Context, doc Document) (View, error)
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(ctx context.Context, doc Document) (View, error)

func (fn PresenterFunc) Open(ctx context.Context, doc Document) (View, error) { return fn(ctx, doc) }

// FilePresenter writes the document to a temporary file and hands the file to
// the system viewer.
type FilePresenter struct {
	// Dir holds the temporary files; empty means os.TempDir.
	Dir string
	// PrintCommand is run with the file path appended, e.g. ["lp"]. Empty
	// disables printing.
	PrintCommand []string
	// Opener overrides how the file is opened. Defaults to browser.OpenFile.
	Opener func(path string) error
}

// Open materialises the document and opens it.
func (p *FilePresenter) Open(ctx context.Context, doc Document) (View, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ext := filepath.Ext(doc.Filename)
	if ext == "" {
		ext = ".pdf"
	}
	file, err := os.CreateTemp(p.Dir, "parkentry-*"+ext)
	if err != nil {
		return nil, fmt.Errorf("submission: create document file: %w", err)
	}
	if _, err := file.Write(doc.Data); err != nil {
		file.Close()
		return nil, fmt.Errorf("submission: write document file: %w", err)
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("submission: close document file: %w", err)
	}

	open := p.Opener
	if open == nil {
		open = browser.OpenFile
	}
	if err := open(file.Name()); err != nil {
		return nil, fmt.Errorf("submission: open %s: %w", file.Name(), err)
	}

	ready := make(chan struct{})
	close(ready)
	return &fileView{path: file.Name(), ready: ready, command: p.PrintCommand}, nil
}

type fileView struct {
	path    string
	ready   chan struct{}
	command []string
}

func (v *fileView) Ready() <-chan struct{} { return v.ready }

// Path returns the location of the materialised document.
func (v *fileView) Path() string { return v.path }

func (v *fileView) Print(ctx context.Context) error {
	if len(v.command) == 0 {
		return ErrPrintBlocked
	}
	args := append(append([]string{}, v.command[1:]...), v.path)
	out, err := exec.CommandContext(ctx, v.command[0], args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s: %v: %s", ErrPrintBlocked, v.command[0], err, out)
	}
	return nil
}

// Notifier reports the outcome of a submission to the user.
type Notifier interface {
	Success(msg string)
	Failure(msg string)
}

// WriterNotifier prints outcomes as plain lines.
type WriterNotifier struct {
	W io.Writer
}

func (n WriterNotifier) Success(msg string) { fmt.Fprintln(n.W, msg) }
func (n WriterNotifier) Failure(msg string) { fmt.Fprintln(n.W, "Error: "+msg) }

// LogNotifier reports outcomes through a logger.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Success(msg string) { n.logger().Info(msg) }
func (n LogNotifier) Failure(msg string) { n.logger().Error(msg) }

func (n LogNotifier) logger() *slog.Logger {
	if n.Logger == nil {
		return slog.Default()
	}
	return n.Logger
}
