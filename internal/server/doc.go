// Package server serves site pages over HTTP with their controllers attached.
//
// GET /{page} returns the page after its controller has loaded lists and
// wired widgets. POST /{page} fills the page's form from the request body,
// submits it through the controller and returns the resulting page, feedback
// message included. /healthz and /metrics report liveness and counters.
package server
