// Package uploads stores group list files attached to tourist registrations,
// on local disk or in an S3 bucket.
package uploads

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrInvalidName is returned for names that would escape the upload root.
var ErrInvalidName = errors.New("uploads: invalid name")

// Store saves an uploaded file and returns the stored name.
type Store interface {
	Save(ctx context.Context, name, contentType string, data []byte) (string, error)
	// Link returns where the admin view can download name from.
	Link(name string) string
}

// SafeName prefixes the client filename with a UTC timestamp and drops
// spaces and any directory part.
func SafeName(now time.Time, filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	base = strings.ReplaceAll(base, " ", "")
	if base == "." || base == "/" {
		base = "upload"
	}
	return now.UTC().Format("20060102150405") + base
}

// Disk writes uploads under Dir and serves them from URLPrefix.
type Disk struct {
	Dir       string
	URLPrefix string
}

// NewDisk creates dir when missing.
func NewDisk(dir string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("uploads: create %s: %w", dir, err)
	}
	return &Disk{Dir: dir, URLPrefix: "/uploads/"}, nil
}

func (d *Disk) Save(ctx context.Context, name, _ string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if err := os.WriteFile(filepath.Join(d.Dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("uploads: write %s: %w", name, err)
	}
	return name, nil
}

func (d *Disk) Link(name string) string {
	return d.URLPrefix + url.PathEscape(name)
}
