package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"docqa/internal/adapter/fs"
	"docqa/internal/domain"
	"docqa/internal/port"
	"docqa/internal/usecase"
)

const maxUploadBytes = 10 << 20

// Server exposes the ingest and question answering pipelines over HTTP.
type Server struct {
	ingestor *usecase.Ingestor
	asker    *usecase.Asker
	store    port.DocumentStore
	log      *slog.Logger
}

func New(ingestor *usecase.Ingestor, asker *usecase.Asker, store port.DocumentStore, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		ingestor: ingestor,
		asker:    asker,
		store:    store,
		log:      log,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/upload", s.handleUpload)
	mux.HandleFunc("/query", s.handleQuery)
	mux.HandleFunc("/documents", s.handleDocuments)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

type uploadResponse struct {
	DocID    string `json:"document_id,omitempty"`
	Name     string `json:"name"`
	Passages int    `json:"passages"`
	Warning  string `json:"warning,omitempty"`
}

// handleUpload accepts either a raw text body with a ?name= parameter or a
// multipart form with a "file" field. PDF uploads go through text
// extraction; everything else is treated as plain text.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	name, text, err := s.readUpload(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	doc, err := s.ingestor.Ingest(r.Context(), name, text, nil)
	if err != nil {
		// An empty document is a warning, not a failure: the request
		// was well-formed, there was just nothing to index.
		if errors.Is(err, domain.ErrEmptyDocument) {
			writeJSON(w, http.StatusOK, uploadResponse{
				Name:    name,
				Warning: "document contains no text and was not indexed",
			})
			return
		}
		s.writeError(w, err)
		return
	}

	passages, _ := s.store.PassagesByDocument(doc.ID)
	writeJSON(w, http.StatusOK, uploadResponse{
		DocID:    doc.ID,
		Name:     doc.Name,
		Passages: len(passages),
	})
}

func (s *Server) readUpload(r *http.Request) (name, text string, err error) {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes))
		if err != nil {
			return "", "", fmt.Errorf("read body: %w", err)
		}
		name = r.URL.Query().Get("name")
		if name == "" {
			name = "document"
		}
		return name, string(body), nil
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return "", "", fmt.Errorf("parse form: %w", err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", "", fmt.Errorf("missing file field: %w", err)
	}
	defer file.Close()

	name = header.Filename
	if strings.HasSuffix(strings.ToLower(name), ".pdf") {
		// The PDF reader needs a seekable file on disk.
		tmp, err := os.CreateTemp("", "upload-*.pdf")
		if err != nil {
			return "", "", fmt.Errorf("create temp file: %w", err)
		}
		defer os.Remove(tmp.Name())
		defer tmp.Close()

		if _, err := io.Copy(tmp, file); err != nil {
			return "", "", fmt.Errorf("save upload: %w", err)
		}
		text, err = fs.ExtractPDF(tmp.Name())
		if err != nil {
			return "", "", err
		}
		return name, text, nil
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return "", "", fmt.Errorf("read upload: %w", err)
	}
	return name, string(data), nil
}

type queryRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id"`
	K         int    `json:"k"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		http.Error(w, "question is required", http.StatusBadRequest)
		return
	}

	answer, err := s.asker.Ask(r.Context(), req.SessionID, req.Question, req.K)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

type documentInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	UploadedAt string `json:"uploaded_at"`
	Passages   int    `json:"passages"`
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	docs, err := s.store.ListDocuments()
	if err != nil {
		s.writeError(w, err)
		return
	}

	infos := make([]documentInfo, len(docs))
	for i, doc := range docs {
		passages, _ := s.store.PassagesByDocument(doc.ID)
		infos[i] = documentInfo{
			ID:         doc.ID,
			Name:       doc.Name,
			UploadedAt: doc.UploadedAt.Format("2006-01-02T15:04:05Z07:00"),
			Passages:   len(passages),
		}
	}

	stats := s.store.Stats()
	writeJSON(w, http.StatusOK, map[string]any{
		"documents":       infos,
		"total_passages":  stats.Passages,
		"avg_passage_len": stats.AvgPassageLen,
	})
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrConfiguration):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrEmbeddingService),
		errors.Is(err, domain.ErrGenerationService):
		status = http.StatusBadGateway
	case errors.Is(err, domain.ErrTimeout):
		status = http.StatusGatewayTimeout
	}

	s.log.Error("request failed", "error", err, "status", status)
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
