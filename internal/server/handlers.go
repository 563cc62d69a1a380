package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/open-cli-collective/htmltoc/internal/transform"
	"github.com/open-cli-collective/htmltoc/pkg/toc"
)

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

type outlineResponse struct {
	Entries  []toc.Entry `json:"entries"`
	Fragment string      `json:"fragment"`
	Markdown string      `json:"markdown,omitempty"`
	Warnings []string    `json:"warnings,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// handleTOC returns the rewritten document.
func (s *Server) handleTOC(w http.ResponseWriter, r *http.Request) {
	opts, err := s.requestOptions(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	var warnings []string
	opts.Warn = s.warnFunc(r, &warnings)

	var out bytes.Buffer
	body := http.MaxBytesReader(w, r.Body, s.maxBody)
	if err := transform.Run(body, &out, opts); err != nil {
		s.transformError(w, r, err)
		return
	}

	_, name, _ := transform.LookupEncoding(opts.Encoding)
	w.Header().Set("Content-Type", "application/xhtml+xml; charset="+name)
	w.Header().Set("X-Toc-Warnings", strconv.Itoa(len(warnings)))
	_, _ = w.Write(out.Bytes())
}

// handleOutline returns the TOC entries and fragment as JSON.
func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	opts, err := s.requestOptions(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	var warnings []string
	opts.Warn = s.warnFunc(r, &warnings)

	outline, err := transform.ExtractOutline(http.MaxBytesReader(w, r.Body, s.maxBody), opts)
	if err != nil {
		s.transformError(w, r, err)
		return
	}

	resp := outlineResponse{
		Entries:  outline.Entries,
		Fragment: outline.Fragment,
		Warnings: warnings,
	}
	if resp.Entries == nil {
		resp.Entries = []toc.Entry{}
	}
	if r.URL.Query().Get("markdown") == "true" {
		md, err := outline.Markdown()
		if err != nil {
			jsonError(w, fmt.Sprintf("failed to convert outline to markdown: %v", err), http.StatusInternalServerError)
			return
		}
		resp.Markdown = md
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// requestOptions overlays query parameters on the server defaults.
func (s *Server) requestOptions(r *http.Request) (transform.Options, error) {
	opts := s.defaults
	q := r.URL.Query()

	if v := q.Get("format"); v != "" {
		f, err := transform.ParseFormat(v)
		if err != nil {
			return opts, err
		}
		opts.Format = f
	}
	if v := q.Get("encoding"); v != "" {
		if _, _, err := transform.LookupEncoding(v); err != nil {
			return opts, err
		}
		opts.Encoding = v
	}
	if v := q.Get("target"); v != "" {
		opts.Target = v
	}
	if v := q.Get("strict"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, fmt.Errorf("invalid strict value %q", v)
		}
		opts.StrictWrappers = b
	}
	return opts, nil
}

func (s *Server) warnFunc(r *http.Request, sink *[]string) func(error) {
	return func(err error) {
		*sink = append(*sink, err.Error())
		s.log.Warn("directive warning",
			"request_id", middleware.GetReqID(r.Context()),
			"warning", err.Error(),
		)
	}
}

// transformError maps a failed transformation to a response.
func (s *Server) transformError(w http.ResponseWriter, r *http.Request, err error) {
	resp := errorResponse{Error: err.Error()}
	if code, ok := toc.CodeOf(err); ok {
		resp.Code = string(code)
	}
	if pos, ok := transform.Position(err); ok {
		resp.Line = pos.Line
		resp.Column = pos.Column
	}

	status := http.StatusUnprocessableEntity
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		status = http.StatusRequestEntityTooLarge
	case transform.Classify(err) == transform.KindIO:
		status = http.StatusBadRequest
	case transform.Classify(err) == transform.KindInternal:
		status = http.StatusInternalServerError
		s.log.Error("transform failed",
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: msg})
}
