package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/dgallion1/sketchfmt/internal/codec"
	"github.com/dgallion1/sketchfmt/internal/lexer"
	"github.com/dgallion1/sketchfmt/internal/parser"
	"github.com/dgallion1/sketchfmt/internal/source"
)

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	text, ok := s.readSketchBody(w, r)
	if !ok {
		return
	}

	start := time.Now()
	sk, err := parser.Parse(text, s.orchestrator.ParseOptions()...)
	s.orchestrator.Stats().Record(source.FormatSketch, time.Since(start), err)
	if err != nil {
		parseError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sk)
}

func (s *Server) handleParseRaw(w http.ResponseWriter, r *http.Request) {
	text, ok := s.readSketchBody(w, r)
	if !ok {
		return
	}

	start := time.Now()
	rs, err := parser.DecodeRaw(text)
	s.orchestrator.Stats().Record(source.FormatRaw, time.Since(start), err)
	if err != nil {
		parseError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rs)
}

type tokenJSON struct {
	Kind   string `json:"kind"`
	Offset int    `json:"offset"`
	Text   string `json:"text"`
}

func (s *Server) handleTokens(w http.ResponseWriter, r *http.Request) {
	text, ok := s.readSketchBody(w, r)
	if !ok {
		return
	}

	stream := lexer.Tokenize(text)
	tokens := make([]tokenJSON, 0, stream.Len())
	for i, tok := range stream.Tokens() {
		tokens = append(tokens, tokenJSON{
			Kind:   tok.Kind.String(),
			Offset: tok.Offset,
			Text:   stream.Text(i),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"tokens": tokens})
}

// readSketchBody returns the request text, taken from the multipart "file"
// field when the request is a form upload and from the body otherwise. On
// failure it has already written the error response.
func (s *Server) readSketchBody(w http.ResponseWriter, r *http.Request) (string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	var body io.Reader = r.Body
	if mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mt == "multipart/form-data" {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
			return "", false
		}
		defer r.MultipartForm.RemoveAll()

		file, _, err := r.FormFile("file")
		if err != nil {
			jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
			return "", false
		}
		defer file.Close()
		body = file
	}

	data, err := io.ReadAll(io.LimitReader(body, s.cfg.MaxUploadBytes+1))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			jsonError(w, fmt.Sprintf("body exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return "", false
		}
		jsonError(w, "failed to read body", http.StatusBadRequest)
		return "", false
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("body exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return "", false
	}
	return string(data), true
}

// parseError reports a decode failure as 422 with whatever position
// information the error carries.
func parseError(w http.ResponseWriter, err error) {
	body := map[string]any{"error": err.Error()}

	var gerr *parser.GrammarError
	var cerr *codec.Error
	switch {
	case errors.As(err, &gerr):
		body["kind"] = "grammar"
		body["token_index"] = gerr.Pos
		if gerr.Offset >= 0 {
			body["offset"] = gerr.Offset
			body["token"] = gerr.Token
		}
	case errors.As(err, &cerr):
		body["kind"] = "number"
		body["input"] = cerr.Input
	case errors.Is(err, parser.ErrRawFormat):
		body["kind"] = "raw_format"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnprocessableEntity)
	json.NewEncoder(w).Encode(body)
}
