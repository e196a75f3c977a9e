// Package cli implements the command-line interface for community-site.
//
// The cli package provides the Cobra-based CLI: render a page through its
// controller, submit a page form, list API collections with filters (text
// table or JSON), and serve pages over HTTP. It wires configuration, logging,
// the API client, page storage and the page controllers together.
package cli
