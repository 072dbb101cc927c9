package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"legal-doc-assistant/internal/db"
	"legal-doc-assistant/internal/extractor"
	"legal-doc-assistant/internal/helper"
	"legal-doc-assistant/internal/models"
	"legal-doc-assistant/internal/textstore"
)

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Legal Document Assistant API",
		"status":  "running",
		"version": "1.0.0",
	})
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "name, email and password are required")
		return
	}

	user, err := db.CreateUser(r.Context(), s.db, req.Name, req.Email, req.Password)
	if errors.Is(err, db.ErrEmailTaken) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("Error creating user")
		respondError(w, http.StatusInternalServerError, "failed to create user")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"message": "User registered",
		"user":    user,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := db.AuthenticateUser(r.Context(), s.db, req.Email, req.Password)
	if errors.Is(err, db.ErrInvalidCredentials) {
		respondError(w, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("Error authenticating user")
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"user":    user,
	})
}

func (s *Server) handleUserDocuments(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	docs, err := db.DocumentsByUser(r.Context(), s.db, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Error fetching documents")
		respondError(w, http.StatusInternalServerError, "error fetching documents")
		return
	}
	if docs == nil {
		docs = []db.DocumentRecord{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	userID := r.FormValue("user_id")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !extractor.SupportedExtension(ext) {
		respondError(w, http.StatusBadRequest, "unsupported file type: "+ext)
		return
	}

	docID, err := helper.GenerateUUID()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "error processing document")
		return
	}

	uploadPath := filepath.Join(s.cfg.Storage.CacheDir, docID+ext)
	dst, err := os.Create(uploadPath)
	if err != nil {
		log.Error().Err(err).Msg("Error saving upload")
		respondError(w, http.StatusInternalServerError, "error saving upload")
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		os.Remove(uploadPath)
		respondError(w, http.StatusInternalServerError, "error saving upload")
		return
	}
	dst.Close()

	var (
		text       string
		extractErr error
	)
	if err := s.runJob(r.Context(), func() {
		text, extractErr = extractor.Extract(uploadPath)
	}); err != nil {
		respondError(w, http.StatusServiceUnavailable, "server busy")
		return
	}
	if extractErr != nil || strings.TrimSpace(text) == "" {
		if extractErr != nil {
			log.Error().Err(extractErr).Str("doc_id", docID).Msg("Error extracting text")
		}
		os.Remove(uploadPath)
		respondError(w, http.StatusBadRequest, "failed to extract text from document")
		return
	}
	if err := s.texts.Save(docID, text); err != nil {
		log.Error().Err(err).Str("doc_id", docID).Msg("Error caching extracted text")
		respondError(w, http.StatusInternalServerError, "error processing document")
		return
	}

	summary := degradedSummary()
	if err := s.runJob(r.Context(), func() {
		report, analyzeErr := s.analyzer.Analyze(r.Context(), docID)
		if analyzeErr != nil {
			log.Error().Err(analyzeErr).Str("doc_id", docID).Msg("Error generating summary")
			return
		}
		summary = report
	}); err != nil {
		respondError(w, http.StatusServiceUnavailable, "server busy")
		return
	}

	rec := &db.DocumentRecord{
		ID:         docID,
		UserID:     userID,
		DocName:    header.Filename,
		Summary:    summary,
		UploadDate: time.Now().UTC(),
	}
	if err := db.UpsertDocumentSummary(r.Context(), s.db, rec); err != nil {
		log.Error().Err(err).Str("doc_id", docID).Msg("Error saving document record")
		respondError(w, http.StatusInternalServerError, "error saving document")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"doc_id":  docID,
		"meta":    map[string]string{"filename": header.Filename},
		"summary": summary,
	})
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "documentID")

	rec, err := db.DocumentByID(r.Context(), s.db, docID)
	if err != nil {
		log.Error().Err(err).Str("doc_id", docID).Msg("Error fetching document")
		respondError(w, http.StatusInternalServerError, "error generating analysis")
		return
	}
	if rec != nil && rec.Summary != nil {
		respondJSON(w, http.StatusOK, rec.Summary)
		return
	}

	var (
		report     *models.AnalysisReport
		analyzeErr error
	)
	if err := s.runJob(r.Context(), func() {
		report, analyzeErr = s.analyzer.Analyze(r.Context(), docID)
	}); err != nil {
		respondError(w, http.StatusServiceUnavailable, "server busy")
		return
	}
	if errors.Is(analyzeErr, textstore.ErrNotFound) {
		respondError(w, http.StatusNotFound, analyzeErr.Error())
		return
	}
	if analyzeErr != nil {
		log.Error().Err(analyzeErr).Str("doc_id", docID).Msg("Error generating analysis")
		respondError(w, http.StatusInternalServerError, "error generating analysis")
		return
	}
	respondJSON(w, http.StatusOK, report)
}

type chatRequest struct {
	UserID string `json:"user_id"`
	Query  string `json:"query"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	docs, err := db.DocumentsByUser(r.Context(), s.db, req.UserID)
	if err != nil {
		log.Error().Err(err).Str("user_id", req.UserID).Msg("Error fetching documents for chat")
		respondError(w, http.StatusInternalServerError, "error processing chat")
		return
	}
	if len(docs) == 0 {
		respondJSON(w, http.StatusOK, map[string]string{
			"response": "You don't have any documents yet. Please upload a document first.",
		})
		return
	}

	docIDs := make([]string, 0, len(docs))
	for _, doc := range docs {
		docIDs = append(docIDs, doc.ID)
	}

	var response string
	if err := s.runJob(r.Context(), func() {
		response = s.composer.Answer(r.Context(), docIDs, req.Query)
	}); err != nil {
		respondError(w, http.StatusServiceUnavailable, "server busy")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"response": response})
}

// degradedSummary is stored when analysis fails at upload time, so the
// upload itself still succeeds.
func degradedSummary() *models.AnalysisReport {
	report := models.NewAnalysisReport()
	report.Summary = []string{"Document uploaded successfully. Analysis may be incomplete."}
	report.DecisionAssist.OverallTake = "Analysis pending"
	return report
}
