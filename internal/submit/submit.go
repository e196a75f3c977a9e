package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/pfrederiksen/community-site/internal/apierr"
	"github.com/pfrederiksen/community-site/internal/form"
	"github.com/pfrederiksen/community-site/internal/logger"
	"github.com/pfrederiksen/community-site/internal/restclient"
)

const (
	// StatusSuccess is the envelope status that marks an accepted submission.
	StatusSuccess = "success"

	// NetworkErrorMessage is reported when the request did not complete or the
	// response body was not JSON.
	NetworkErrorMessage = "Network or server error."
)

// Result is the normalised outcome of a submission. It is either a success
// (OK, Payload) or a failure (Message, FieldErrors, Err).
type Result struct {
	OK          bool
	StatusCode  int
	Payload     map[string]any
	Message     string
	FieldErrors map[string][]string
	Err         error
}

// Label pairs an API field name with the prefix shown to users.
type Label struct {
	Field string
	Label string
}

// Describe returns the message to show for a failed result: the first field
// error in priority order ("Name: is required."), else the API message, else
// fallback.
func (r Result) Describe(fallback string, priority ...Label) string {
	for _, l := range priority {
		if msgs := r.FieldErrors[l.Field]; len(msgs) > 0 {
			return l.Label + ": " + strings.Join(msgs, " ")
		}
	}
	if r.Message != "" {
		return r.Message
	}
	return fallback
}

// Submitter posts form data to the remote API.
type Submitter struct {
	client  *resty.Client
	log     *logger.Logger
	metrics *logger.Metrics
}

// New creates a Submitter. A nil client gets an instrumented default; a nil
// logger uses the package logger.
func New(client *resty.Client, log *logger.Logger) *Submitter {
	if log == nil {
		log = logger.Default()
	}
	if client == nil {
		client = restclient.New(restclient.Options{Logger: log})
	}
	return &Submitter{
		client:  client,
		log:     log,
		metrics: logger.DefaultMetrics(),
	}
}

// WithMetrics replaces the metrics tracker.
func (s *Submitter) WithMetrics(m *logger.Metrics) *Submitter {
	s.metrics = m
	return s
}

// Submit sends fields as a multipart POST to endpoint with headers attached.
// It always returns a Result; transport and decode problems become failures
// with NetworkErrorMessage and the cause in Err.
func (s *Submitter) Submit(ctx context.Context, endpoint string, fields form.Data, headers map[string]string) Result {
	start := time.Now()
	result := s.do(ctx, endpoint, fields, headers)
	s.metrics.RecordTiming("submit", time.Since(start))

	logFields := logger.Fields{
		"endpoint": endpoint,
		"status":   result.StatusCode,
		"fields":   len(fields),
	}
	if result.OK {
		s.metrics.IncrCounter("submit.success")
		s.log.Info("Form submitted", logFields)
	} else {
		s.metrics.IncrCounter("submit.failure")
		s.log.Error("Form submission failed", logFields, result.Err)
	}
	return result
}

func (s *Submitter) do(ctx context.Context, endpoint string, fields form.Data, headers map[string]string) Result {
	req := s.client.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetHeader("Accept", "application/json")
	if len(fields) > 0 {
		req.SetMultipartFields(multipartFields(fields)...)
	}

	resp, err := req.Post(endpoint)
	if err != nil {
		return Result{
			Message: NetworkErrorMessage,
			Err:     apierr.NewTransportError("POST "+endpoint, err),
		}
	}

	var body any
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return Result{
			StatusCode: resp.StatusCode(),
			Message:    NetworkErrorMessage,
			Err:        apierr.NewDecodeError("POST "+endpoint, err),
		}
	}

	envelope, _ := body.(map[string]any)
	status, _ := envelope["status"].(string)
	if resp.IsSuccess() && status == StatusSuccess {
		return Result{
			OK:         true,
			StatusCode: resp.StatusCode(),
			Payload:    envelope,
			Message:    stringValue(envelope["message"]),
		}
	}

	message := stringValue(envelope["message"])
	return Result{
		StatusCode:  resp.StatusCode(),
		Payload:     envelope,
		Message:     message,
		FieldErrors: fieldErrors(envelope),
		Err:         apierr.NewAPIError(strings.TrimSpace(resp.Status() + " " + message)),
	}
}

func multipartFields(fields form.Data) []*resty.MultipartField {
	out := make([]*resty.MultipartField, 0, len(fields))
	for _, f := range fields {
		if f.IsFile() {
			out = append(out, &resty.MultipartField{
				Param:       f.Name,
				FileName:    f.File.Name,
				ContentType: f.File.ContentType,
				Reader:      bytes.NewReader(f.File.Data),
			})
			continue
		}
		out = append(out, &resty.MultipartField{
			Param:  f.Name,
			Reader: strings.NewReader(f.Value),
		})
	}
	return out
}

// fieldErrors collects every envelope key other than status and message whose
// value is a string or a list of strings.
func fieldErrors(envelope map[string]any) map[string][]string {
	out := make(map[string][]string)
	for key, value := range envelope {
		if key == "status" || key == "message" {
			continue
		}
		switch v := value.(type) {
		case string:
			out[key] = []string{v}
		case []any:
			msgs := make([]string, 0, len(v))
			for _, item := range v {
				if s, ok := item.(string); ok {
					msgs = append(msgs, s)
				}
			}
			if len(msgs) > 0 {
				out[key] = msgs
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}
