// Package server exposes document generation and draft storage over HTTP.
//
// Routes:
//
//	GET    /health
//	POST   /v1/documents          build a .docx from delta and image blocks
//	GET    /v1/drafts             list drafts, newest first
//	POST   /v1/drafts             create a draft
//	GET    /v1/drafts/{id}        fetch a draft
//	PUT    /v1/drafts/{id}        replace a draft
//	DELETE /v1/drafts/{id}        delete a draft
//	GET    /v1/drafts/{id}/docx   render a draft as .docx
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/benjaminschreck/go-docxgen/pkg/docxgen"
	"github.com/benjaminschreck/go-docxgen/pkg/store"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// DraftStore is the persistence the draft routes need. *store.Store satisfies it.
type DraftStore interface {
	Insert(ctx context.Context, title, content string) (int64, error)
	Update(ctx context.Context, d store.Draft) error
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*store.Draft, error)
	List(ctx context.Context) ([]store.Draft, error)
}

// Server serves the HTTP API. Every request builds its own document.
type Server struct {
	config *docxgen.Config
	drafts DraftStore
}

// New creates a server. drafts may be nil, in which case the draft routes
// answer 503.
func New(config *docxgen.Config, drafts DraftStore) *Server {
	if config == nil {
		config = docxgen.DefaultConfig()
	}
	return &Server{config: config, drafts: drafts}
}

// Handler returns the routed handler wrapped in logging, recovery and body
// size limits.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /v1/documents", s.handleCreateDocument)
	mux.HandleFunc("GET /v1/drafts", s.withDrafts(s.handleListDrafts))
	mux.HandleFunc("POST /v1/drafts", s.withDrafts(s.handleCreateDraft))
	mux.HandleFunc("GET /v1/drafts/{id}", s.withDrafts(s.handleGetDraft))
	mux.HandleFunc("PUT /v1/drafts/{id}", s.withDrafts(s.handleUpdateDraft))
	mux.HandleFunc("DELETE /v1/drafts/{id}", s.withDrafts(s.handleDeleteDraft))
	mux.HandleFunc("GET /v1/drafts/{id}/docx", s.withDrafts(s.handleRenderDraft))

	var h http.Handler = mux
	h = limitMiddleware(s.config.MaxRequestBytes, h)
	h = recoveryMiddleware(h)
	h = logMiddleware(h)
	return h
}

type documentRequest struct {
	Title  string         `json:"title"`
	Blocks []blockRequest `json:"blocks"`
}

type blockRequest struct {
	// Delta is either a delta object or a string holding delta JSON
	Delta json.RawMessage `json:"delta"`
	Image *imageRequest   `json:"image"`
}

type imageRequest struct {
	// Data is base64 encoded
	Data   []byte `json:"data"`
	Width  uint32 `json:"width"`
	Height uint32 `json:"height"`
}

type draftRequest struct {
	Title   string          `json:"title"`
	Content json.RawMessage `json:"content"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// POST /v1/documents
// Blocks whose delta does not parse are skipped, as the builder does, and
// their indexes reported in the X-Skipped-Blocks header.
func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	b := docxgen.NewBuilderWithConfig(s.config)
	b.SetTitle(req.Title)

	var skipped []string
	for i, block := range req.Blocks {
		switch {
		case block.Image != nil && len(block.Delta) > 0:
			writeError(w, http.StatusBadRequest, fmt.Sprintf("block %d: delta and image are mutually exclusive", i))
			return
		case block.Image != nil:
			if err := b.AddImageFrom(bytes.NewReader(block.Image.Data), block.Image.Width, block.Image.Height); err != nil {
				writeError(w, http.StatusBadRequest, fmt.Sprintf("block %d: %v", i, err))
				return
			}
		case len(block.Delta) > 0:
			deltaJSON, err := rawDelta(block.Delta)
			if err == nil {
				err = b.AddText(deltaJSON)
			}
			if err != nil {
				skipped = append(skipped, strconv.Itoa(i))
			}
		default:
			writeError(w, http.StatusBadRequest, fmt.Sprintf("block %d: needs a delta or an image", i))
			return
		}
	}

	if len(skipped) > 0 {
		w.Header().Set("X-Skipped-Blocks", strings.Join(skipped, ","))
	}
	s.writeDocx(w, b, "document.docx")
}

// GET /v1/drafts
func (s *Server) handleListDrafts(w http.ResponseWriter, r *http.Request) {
	drafts, err := s.drafts.List(r.Context())
	if err != nil {
		docxgen.Error("listing drafts: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list drafts")
		return
	}
	if drafts == nil {
		drafts = []store.Draft{}
	}
	writeJSON(w, http.StatusOK, drafts)
}

// POST /v1/drafts
func (s *Server) handleCreateDraft(w http.ResponseWriter, r *http.Request) {
	title, content, ok := decodeDraft(w, r)
	if !ok {
		return
	}

	id, err := s.drafts.Insert(r.Context(), title, content)
	if err != nil {
		docxgen.Error("inserting draft: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to save draft")
		return
	}

	draft, err := s.drafts.Get(r.Context(), id)
	if err != nil {
		docxgen.Error("reading draft %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to read draft")
		return
	}
	writeJSON(w, http.StatusCreated, draft)
}

// GET /v1/drafts/{id}
func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	draft, ok := s.lookupDraft(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

// PUT /v1/drafts/{id}
func (s *Server) handleUpdateDraft(w http.ResponseWriter, r *http.Request) {
	id, ok := draftID(w, r)
	if !ok {
		return
	}
	title, content, ok := decodeDraft(w, r)
	if !ok {
		return
	}

	err := s.drafts.Update(r.Context(), store.Draft{ID: id, Title: title, Content: content})
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "draft not found")
		return
	}
	if err != nil {
		docxgen.Error("updating draft %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to update draft")
		return
	}

	draft, ok := s.lookupDraft(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

// DELETE /v1/drafts/{id}
func (s *Server) handleDeleteDraft(w http.ResponseWriter, r *http.Request) {
	id, ok := draftID(w, r)
	if !ok {
		return
	}

	err := s.drafts.Delete(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "draft not found")
		return
	}
	if err != nil {
		docxgen.Error("deleting draft %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to delete draft")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /v1/drafts/{id}/docx
func (s *Server) handleRenderDraft(w http.ResponseWriter, r *http.Request) {
	draft, ok := s.lookupDraft(w, r)
	if !ok {
		return
	}

	b := docxgen.NewBuilderWithConfig(s.config)
	b.SetTitle(draft.Title)
	if err := b.AddText(draft.Content); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.writeDocx(w, b, fmt.Sprintf("draft-%d.docx", draft.ID))
}

func (s *Server) writeDocx(w http.ResponseWriter, b *docxgen.Builder, filename string) {
	data, err := b.Bytes()
	if err != nil {
		docxgen.Error("serializing document: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to generate document")
		return
	}

	w.Header().Set("Content-Type", docxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) withDrafts(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.drafts == nil {
			writeError(w, http.StatusServiceUnavailable, "draft storage is not configured")
			return
		}
		next(w, r)
	}
}

func (s *Server) lookupDraft(w http.ResponseWriter, r *http.Request) (*store.Draft, bool) {
	id, ok := draftID(w, r)
	if !ok {
		return nil, false
	}

	draft, err := s.drafts.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "draft not found")
		return nil, false
	}
	if err != nil {
		docxgen.Error("reading draft %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to read draft")
		return nil, false
	}
	return draft, true
}

func draftID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid draft id")
		return 0, false
	}
	return id, true
}

// decodeDraft reads a draft body and checks that its content is a valid delta.
func decodeDraft(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	var req draftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return "", "", false
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return "", "", false
	}

	content, err := rawDelta(req.Content)
	if err == nil {
		_, err = docxgen.ParseDelta(content)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid content: "+err.Error())
		return "", "", false
	}
	return req.Title, content, true
}

// rawDelta accepts a delta either inline or wrapped in a JSON string.
func rawDelta(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	return string(trimmed), nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
