package api

import (
	"bytes"
	"context"
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/TrueFit/internal/models"
)

// Outcome is the terminal state of a single request.
type Outcome string

const (
	OutcomeSucceeded   Outcome = "succeeded"
	OutcomeFailedAuth  Outcome = "failed_auth"
	OutcomeFailedOther Outcome = "failed_other"
)

// Form is a multipart body. Fields and files are written in insertion
// order.
type Form struct {
	parts []formPart
}

type formPart struct {
	name  string
	value string
	file  *models.File
}

// AddField appends a plain form field.
func (f *Form) AddField(name, value string) {
	f.parts = append(f.parts, formPart{name: name, value: value})
}

// AddFile appends a file part.
func (f *Form) AddFile(name string, file models.File) {
	f.parts = append(f.parts, formPart{name: name, file: &file})
}

// Encode renders the form and returns the body with its Content-Type,
// boundary included.
func (f *Form) Encode() (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range f.parts {
		if p.file == nil {
			if err := w.WriteField(p.name, p.value); err != nil {
				return nil, "", err
			}
			continue
		}
		part, err := w.CreateFormFile(p.name, p.file.Name)
		if err != nil {
			return nil, "", err
		}
		if p.file.Content != nil {
			if _, err := io.Copy(part, p.file.Content); err != nil {
				return nil, "", fmt.Errorf("read %s: %w", p.file.Name, err)
			}
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// none is the result type of endpoints whose body is ignored.
type none struct{}

// do sends one request for ep and decodes a 2xx body into T. payload is a
// JSON value for KindJSON endpoints (nil for no body) and a *Form for
// KindMultipart ones.
func do[T any](ctx context.Context, c *Client, ep Endpoint, path string, payload any) (T, error) {
	var out T

	body, contentType, err := encodeBody(ep, payload)
	if err != nil {
		return out, &APIError{Endpoint: ep.Name, Message: ep.Fallback, Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, ep.Method, c.baseURL+path, body)
	if err != nil {
		return out, &APIError{Endpoint: ep.Name, Message: ep.Fallback, Cause: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json, text/plain, */*")
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	reqID := c.newID()
	req.Header.Set("X-Request-ID", reqID)

	start := time.Now()
	fields := []zap.Field{
		zap.String("endpoint", ep.Name),
		zap.String("method", ep.Method),
		zap.String("path", path),
		zap.Stringer("kind", ep.Kind),
		zap.String("request_id", reqID),
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed", append(fields,
			zap.String("outcome", string(OutcomeFailedOther)),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))...)
		return out, &APIError{Endpoint: ep.Name, Message: ep.Fallback, Cause: err}
	}
	defer resp.Body.Close()

	data, readErr := io.ReadAll(resp.Body)
	fields = append(fields, zap.Int("status", resp.StatusCode), zap.Duration("duration", time.Since(start)))

	if resp.StatusCode == http.StatusUnauthorized {
		evicted := c.evict(ctx, ep)
		c.log.Debug("request rejected", append(fields,
			zap.String("outcome", string(OutcomeFailedAuth)),
			zap.Bool("evicted", evicted))...)
		return out, &APIError{Endpoint: ep.Name, Status: resp.StatusCode, Message: messageFrom(data, ep.Fallback)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Debug("request failed", append(fields, zap.String("outcome", string(OutcomeFailedOther)))...)
		return out, &APIError{Endpoint: ep.Name, Status: resp.StatusCode, Message: messageFrom(data, ep.Fallback)}
	}

	if readErr != nil {
		c.log.Debug("request failed", append(fields, zap.String("outcome", string(OutcomeFailedOther)), zap.Error(readErr))...)
		return out, &APIError{Endpoint: ep.Name, Status: resp.StatusCode, Message: ep.Fallback, Cause: readErr}
	}

	if err := decodeBody(data, &out); err != nil {
		c.log.Debug("request failed", append(fields, zap.String("outcome", string(OutcomeFailedOther)), zap.Error(err))...)
		return out, &APIError{Endpoint: ep.Name, Status: resp.StatusCode, Message: ep.Fallback, Cause: err}
	}

	c.log.Debug("request succeeded", append(fields, zap.String("outcome", string(OutcomeSucceeded)))...)
	return out, nil
}

func encodeBody(ep Endpoint, payload any) (io.Reader, string, error) {
	switch ep.Kind {
	case KindMultipart:
		form, ok := payload.(*Form)
		if !ok || form == nil {
			return nil, "", errors.New("multipart endpoint requires a form")
		}
		buf, ct, err := form.Encode()
		if err != nil {
			return nil, "", err
		}
		return buf, ct, nil
	default:
		if payload == nil {
			return nil, "application/json", nil
		}
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, "", fmt.Errorf("encode request: %w", err)
		}
		return bytes.NewReader(b), "application/json", nil
	}
}

// decodeBody fills out from a success body. Empty bodies leave out at its
// zero value. Plain-text bodies are accepted for string results and for
// types implementing encoding.TextUnmarshaler.
func decodeBody(data []byte, out any) error {
	b := bytes.TrimSpace(data)
	if len(b) == 0 {
		return nil
	}

	switch v := out.(type) {
	case *none:
		return nil
	case *string:
		if b[0] == '"' {
			if err := json.Unmarshal(b, v); err == nil {
				return nil
			}
		}
		*v = string(b)
		return nil
	}

	if json.Valid(b) {
		if err := json.Unmarshal(b, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	if tu, ok := out.(encoding.TextUnmarshaler); ok {
		return tu.UnmarshalText(b)
	}
	return errors.New("decode response: body is not JSON")
}
