// Package storage provides file-based persistence for site pages.
//
// Page templates are plain HTML files named <page>.html, read from a
// configured directory or from the copies built into the binary. Rendered
// pages, after their controller has run, are written to an output directory
// (by default ~/.local/share/community-site/).
package storage
