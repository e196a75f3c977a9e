// Package restclient builds the resty client shared by the submitter, the list
// loader and the page fetcher, with request logging and timing hooks.
package restclient

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/pfrederiksen/community-site/internal/logger"
)

const UserAgent = "community-site/1.0 (github.com/pfrederiksen/community-site)"

// Options configures New. Zero values are usable: no timeout (the client
// default), the package logger and the package metrics.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Logger    *logger.Logger
	Metrics   *logger.Metrics
}

// New creates an instrumented resty client.
func New(opts Options) *resty.Client {
	client := resty.New()
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = UserAgent
	}
	client.SetHeader("User-Agent", ua)

	Instrument(client, opts.Logger, opts.Metrics)
	return client
}

type reqCtxKeyType int

var reqCtxKey reqCtxKeyType

type reqCtx struct {
	id    string
	start time.Time
}

type instrument struct {
	log     *logger.Logger
	metrics *logger.Metrics
}

// Instrument attaches debug logging and an "http.request" timing to client.
func Instrument(client *resty.Client, log *logger.Logger, metrics *logger.Metrics) {
	if log == nil {
		log = logger.Default()
	}
	if metrics == nil {
		metrics = logger.DefaultMetrics()
	}
	i := instrument{log: log, metrics: metrics}

	client.OnBeforeRequest(i.onBeforeRequest)
	client.OnAfterResponse(i.onAfterResponse)
	client.OnError(i.onError)
}

// RequestID returns the ID assigned to the request carried by ctx, if any.
func RequestID(ctx context.Context) string {
	rc, ok := ctx.Value(reqCtxKey).(reqCtx)
	if !ok {
		return ""
	}
	return rc.id
}

func (i instrument) onBeforeRequest(_ *resty.Client, req *resty.Request) error {
	rc := reqCtx{id: uuid.NewString(), start: time.Now()}
	req.SetContext(context.WithValue(req.Context(), reqCtxKey, rc))

	i.log.Debug("HTTP request", logger.Fields{
		"request_id": rc.id,
		"method":     req.Method,
		"url":        req.URL,
	})
	return nil
}

func (i instrument) onAfterResponse(_ *resty.Client, res *resty.Response) error {
	fields := logger.Fields{
		"method": res.Request.Method,
		"url":    res.Request.URL,
		"status": res.StatusCode(),
	}
	if rc, ok := res.Request.Context().Value(reqCtxKey).(reqCtx); ok {
		elapsed := time.Since(rc.start)
		i.metrics.RecordTiming("http.request", elapsed)
		fields["request_id"] = rc.id
		fields["duration_ms"] = elapsed.Milliseconds()
	}
	i.log.Debug("HTTP response", fields)
	return nil
}

func (i instrument) onError(req *resty.Request, err error) {
	i.metrics.IncrCounter("http.error")
	i.log.Warn("HTTP request failed", logger.Fields{
		"request_id": RequestID(req.Context()),
		"method":     req.Method,
		"url":        req.URL,
		"error":      err.Error(),
	})
}
