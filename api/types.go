// Package api provides a client for the htmltoc HTTP server.
package api

import (
	"fmt"

	"github.com/open-cli-collective/htmltoc/pkg/toc"
)

// ErrorResponse is the body the server sends with a failed request.
type ErrorResponse struct {
	StatusCode int    `json:"-"`
	Message    string `json:"error"`
	Code       string `json:"code,omitempty"`
	Line       int    `json:"line,omitempty"`
	Column     int    `json:"column,omitempty"`
}

func (e *ErrorResponse) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("server error (status %d) at line %d, column %d: %s", e.StatusCode, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("server error (status %d): %s", e.StatusCode, e.Message)
}

// Outline is the server's description of a document's tables of contents.
type Outline struct {
	Entries  []toc.Entry `json:"entries"`
	Fragment string      `json:"fragment"`
	Markdown string      `json:"markdown,omitempty"`
	Warnings []string    `json:"warnings,omitempty"`
}

// Document is a rewritten document returned by the server.
type Document struct {
	Body        []byte
	ContentType string
	Warnings    int
}

// Params are the per-request overrides the server accepts. Zero values
// leave the server defaults in place.
type Params struct {
	Format         string
	Encoding       string
	Target         string
	StrictWrappers *bool
	Markdown       bool
}
