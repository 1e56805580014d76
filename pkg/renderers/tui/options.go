package tui

import (
	"io"
	"os"
)

// Theme captures optional message prefixes the runner applies when printing.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
}

// FileReader loads the file named by the group list prompt.
type FileReader func(path string) ([]byte, error)

// Option configures the runner.
type Option func(*Runner)

// WithPromptDriver overrides the prompt driver used by the runner.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Runner) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutput sets where the default survey driver prints messages.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		if w != nil {
			r.out = w
		}
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Runner) {
		r.theme = theme
	}
}

// WithFileReader overrides how attached files are read.
func WithFileReader(fn FileReader) Option {
	return func(r *Runner) {
		if fn != nil {
			r.readFile = fn
		}
	}
}

func defaultFileReader(path string) ([]byte, error) {
	return os.ReadFile(path)
}
