package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// InputConfig describes a free text prompt.
type InputConfig struct {
	Message   string
	Default   string
	Help      string
	Validator func(string) error
	// Suggest feeds tab completion, as for the company field.
	Suggest func(toComplete string) []string
}

// ConfirmConfig describes a yes/no prompt such as "Add another client?".
type ConfirmConfig struct {
	Message string
	Default bool
	Help    string
}

// SelectConfig describes a pick from a fixed option list. Defaults only
// applies to multi-select.
type SelectConfig struct {
	Message      string
	Options      []string
	DefaultIndex int
	Defaults     []int
	Help         string
	PageSize     int
}

// PromptDriver is the terminal seam of the registration flow. Tests replace
// it with a scripted driver.
type PromptDriver interface {
	Input(ctx context.Context, cfg InputConfig) (string, error)
	Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error)
	Select(ctx context.Context, cfg SelectConfig) (int, error)
	MultiSelect(ctx context.Context, cfg SelectConfig) ([]int, error)
	Info(ctx context.Context, msg string) error
}

type surveyDriver struct {
	out io.Writer
}

// NewSurveyDriver returns the interactive driver. Info lines go to out, or
// stdout when out is nil.
func NewSurveyDriver(out io.Writer) PromptDriver {
	if out == nil {
		out = os.Stdout
	}
	return &surveyDriver{out: out}
}

// ask runs one survey question unless ctx is already done.
func ask(ctx context.Context, prompt survey.Prompt, answer any, opts ...survey.AskOpt) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := survey.AskOne(prompt, answer, opts...)
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}

func (d *surveyDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	var opts []survey.AskOpt
	if validate := cfg.Validator; validate != nil {
		opts = append(opts, survey.WithValidator(func(ans any) error {
			text, _ := ans.(string)
			return validate(text)
		}))
	}

	var answer string
	err := ask(ctx, &survey.Input{
		Message: cfg.Message,
		Default: cfg.Default,
		Help:    cfg.Help,
		Suggest: cfg.Suggest,
	}, &answer, opts...)
	return answer, err
}

func (d *surveyDriver) Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error) {
	var answer bool
	err := ask(ctx, &survey.Confirm{
		Message: cfg.Message,
		Default: cfg.Default,
		Help:    cfg.Help,
	}, &answer)
	return answer, err
}

func (d *surveyDriver) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	prompt := &survey.Select{
		Message:  cfg.Message,
		Options:  cfg.Options,
		Help:     cfg.Help,
		PageSize: cfg.PageSize,
	}
	if at(cfg.Options, cfg.DefaultIndex) {
		prompt.Default = cfg.Options[cfg.DefaultIndex]
	}

	var answer string
	if err := ask(ctx, prompt, &answer); err != nil {
		return 0, err
	}
	return indexOf(cfg.Options, answer), nil
}

func (d *surveyDriver) MultiSelect(ctx context.Context, cfg SelectConfig) ([]int, error) {
	prompt := &survey.MultiSelect{
		Message:  cfg.Message,
		Options:  cfg.Options,
		Help:     cfg.Help,
		PageSize: cfg.PageSize,
	}
	var preset []string
	for _, i := range cfg.Defaults {
		if at(cfg.Options, i) {
			preset = append(preset, cfg.Options[i])
		}
	}
	if len(preset) > 0 {
		prompt.Default = preset
	}

	var answers []string
	if err := ask(ctx, prompt, &answers); err != nil {
		return nil, err
	}
	picked := make(map[string]bool, len(answers))
	for _, a := range answers {
		picked[a] = true
	}
	var out []int
	for i, option := range cfg.Options {
		if picked[option] {
			out = append(out, i)
		}
	}
	return out, nil
}

func (d *surveyDriver) Info(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(d.out, msg)
	return err
}

func at(options []string, i int) bool {
	return i >= 0 && i < len(options)
}

func indexOf(options []string, value string) int {
	for i, option := range options {
		if option == value {
			return i
		}
	}
	return -1
}
