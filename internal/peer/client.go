// Package peer calls the companion service over HTTP. Calls are synchronous,
// bounded by a timeout and never retried.
package peer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const DefaultTimeout = 10 * time.Second

var ErrUnavailable = errors.New("peer service unavailable")

// StatusError reports a non-2xx answer from the peer.
type StatusError struct {
	Code int
	Body string
}

func (err *StatusError) Error() string {
	return fmt.Sprintf("peer responded with status %d: %s", err.Code, err.Body)
}

func (err *StatusError) Unwrap() error {
	return ErrUnavailable
}

type client struct {
	baseURL string
	timeout time.Duration
}

func newClient(baseURL string, timeout time.Duration) client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return client{baseURL: strings.TrimRight(baseURL, "/"), timeout: timeout}
}

func (c client) url(path string) string {
	return c.baseURL + path
}

// budget returns the call timeout, shortened to the context deadline when sooner.
func (c client) budget(ctx context.Context) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return 0, context.DeadlineExceeded
	}
	return timeout, nil
}

type upload struct {
	fields   map[string]string
	field    string
	filename string
	content  []byte
}

func (c client) postMultipart(ctx context.Context, path string, payload upload) ([]byte, error) {
	timeout, err := c.budget(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	args := fiber.AcquireArgs()
	defer fiber.ReleaseArgs(args)
	for key, value := range payload.fields {
		args.Set(key, value)
	}

	agent := fiber.Post(c.url(path)).Timeout(timeout)
	agent.FileData(&fiber.FormFile{
		Fieldname: payload.field,
		Name:      payload.filename,
		Content:   payload.content,
	})
	agent.MultipartForm(args)

	return finish(agent)
}

func (c client) get(ctx context.Context, path string) ([]byte, error) {
	timeout, err := c.budget(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	agent := fiber.Get(c.url(path)).Timeout(timeout)
	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	return finish(agent)
}

func finish(agent *fiber.Agent) ([]byte, error) {
	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, errors.Join(errs...))
	}
	if code < fiber.StatusOK || code >= fiber.StatusMultipleChoices {
		return nil, &StatusError{Code: code, Body: truncate(string(body), 256)}
	}
	return body, nil
}

func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if len(value) <= limit {
		return value
	}
	return value[:limit]
}
