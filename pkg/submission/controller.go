package submission

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/goliatone/go-parkentry/pkg/form"
)

const (
	// DefaultPrintDelay bounds how long the controller waits for the opened
	// view before attempting to print anyway.
	DefaultPrintDelay = time.Second
	// DefaultFilename names documents whose response carries no filename.
	DefaultFilename = "receipt.pdf"

	tracerName = "github.com/goliatone/go-parkentry/pkg/submission"
)

// User-facing outcome messages.
const (
	MessageSuccess   = "Form submitted successfully."
	MessageTransport = "An error occurred while submitting the form."
)

// State is the lifecycle of the latest submission attempt.
type State int

const (
	StateIdle State = iota
	StateSending
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Source is the form being submitted. Sources that also implement
// Validate() error are validated before anything is sent.
type Source interface {
	Payload() *form.Payload
	Reset()
}

type validator interface {
	Validate() error
}

// Result describes a successful submission.
type Result struct {
	StatusCode int
	Document   Document
	View       View
}

// Option configures a Controller.
type Option func(*Controller)

// WithHTTPClient overrides the client used to post the form.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Controller) {
		if client != nil {
			c.client = client
		}
	}
}

// WithPresenter sets how the returned document is opened.
func WithPresenter(p Presenter) Option {
	return func(c *Controller) {
		c.presenter = p
	}
}

// WithNotifier sets how outcomes are reported to the user.
func WithNotifier(n Notifier) Option {
	return func(c *Controller) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithPrint toggles the print attempt after opening the document.
func WithPrint(enabled bool) Option {
	return func(c *Controller) {
		c.print = enabled
	}
}

// WithPrintDelay overrides DefaultPrintDelay.
func WithPrintDelay(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.printDelay = d
		}
	}
}

// WithLogger overrides the controller logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTracer overrides the tracer resolved from the global provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Controller) {
		if tracer != nil {
			c.tracer = tracer
		}
	}
}

// Controller posts forms to the submission endpoint and handles the document
// it answers with.
type Controller struct {
	endpoint   string
	client     *http.Client
	presenter  Presenter
	notifier   Notifier
	print      bool
	printDelay time.Duration
	logger     *slog.Logger
	tracer     trace.Tracer

	mu    sync.Mutex
	state State
}

// New returns a controller posting to endpoint.
func New(endpoint string, opts ...Option) (*Controller, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, errors.New("submission: endpoint is required")
	}
	c := &Controller{
		endpoint:   endpoint,
		client:     &http.Client{Timeout: 30 * time.Second},
		presenter:  &FilePresenter{},
		print:      true,
		printDelay: DefaultPrintDelay,
		logger:     slog.Default(),
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(c)
	}
	if c.notifier == nil {
		c.notifier = LogNotifier{Logger: c.logger}
	}
	return c, nil
}

// Endpoint returns the submission URL.
func (c *Controller) Endpoint() string { return c.endpoint }

// State returns the state of the latest attempt.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Submit serialises src, posts it and handles the outcome:
//   - a non-success status yields *RejectedError and leaves src untouched;
//   - a transport failure yields ErrTransport and leaves src untouched;
//   - a success opens the document, attempts to print it, resets src and
//     reports success.
//
// There is no automatic retry.
func (c *Controller) Submit(ctx context.Context, src Source) (*Result, error) {
	if src == nil {
		return nil, errors.New("submission: source is nil")
	}
	if v, ok := src.(validator); ok {
		if err := v.Validate(); err != nil {
			c.notifier.Failure(err.Error())
			return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
		}
	}

	ctx, span := c.tracer.Start(ctx, "submission.Submit",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("http.url", c.endpoint)),
	)
	defer span.End()

	c.setState(StateSending)
	result, err := c.send(ctx, src.Payload())
	if err != nil {
		c.setState(StateFailed)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		var rejected *RejectedError
		if errors.As(err, &rejected) {
			c.notifier.Failure(fmt.Sprintf("Error %d: %s", rejected.StatusCode, rejected.Body))
		} else {
			c.notifier.Failure(MessageTransport)
		}
		c.logger.Warn("submission failed", "endpoint", c.endpoint, "error", err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("http.status_code", result.StatusCode))

	if c.presenter != nil {
		view, err := c.presenter.Open(ctx, result.Document)
		if err != nil {
			c.logger.Error("document could not be opened", "error", err)
			c.notifier.Failure("The receipt could not be opened.")
		} else {
			result.View = view
			if c.print {
				c.attemptPrint(ctx, view)
			}
		}
	}

	src.Reset()
	c.setState(StateSucceeded)
	c.notifier.Success(MessageSuccess)
	return result, nil
}

func (c *Controller) send(ctx context.Context, payload *form.Payload) (*Result, error) {
	var body bytes.Buffer
	contentType, err := payload.WriteMultipart(&body)
	if err != nil {
		return nil, fmt.Errorf("submission: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("submission: build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrTransport, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RejectedError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	return &Result{
		StatusCode: resp.StatusCode,
		Document: Document{
			Data:        data,
			ContentType: resp.Header.Get("Content-Type"),
			Filename:    filenameOf(resp.Header.Get("Content-Disposition")),
		},
	}, nil
}

func (c *Controller) attemptPrint(ctx context.Context, view View) {
	timer := time.NewTimer(c.printDelay)
	defer timer.Stop()
	select {
	case <-view.Ready():
	case <-timer.C:
	case <-ctx.Done():
		return
	}
	if err := view.Print(ctx); err != nil {
		c.logger.Debug("print attempt skipped", "error", err)
	}
}

func filenameOf(disposition string) string {
	if disposition == "" {
		return DefaultFilename
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil || params["filename"] == "" {
		return DefaultFilename
	}
	return params["filename"]
}
