package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/atlaslearn/atlas/backend/summarizer"
	"github.com/atlaslearn/atlas/backend/upstream"
)

const (
	defaultSummarySentences = 5
	maxPDFBytes             = 32 << 20

	SummarizerWarning = "Using fallback summarization method because the Flask backend is not available"
)

type SummarizeEndpoints struct {
	client *upstream.Client
}

func NewSummarizeEndpoints(client *upstream.Client) *SummarizeEndpoints {
	return &SummarizeEndpoints{client: client}
}

func (e *SummarizeEndpoints) RegisterRoutes(r chi.Router) {
	r.Post("/text-summarize", e.TextHandler)
	r.Post("/pdf-summarize", e.PDFHandler)
}

type textSummaryRequest struct {
	Text          string `json:"text"`
	SummaryLength int    `json:"summary_length"`
}

type summaryResponse struct {
	summarizer.Summary
	Filename string `json:"filename,omitempty"`
	upstream.Meta
}

// passThrough labels an upstream body as such and writes it.
func passThrough(w http.ResponseWriter, body map[string]any) {
	if body == nil {
		body = map[string]any{}
	}
	out := upstream.Upstream(body)
	body["source"] = out.Source
	writeOutcome(w, out, body)
}

// writeUpstreamRejection relays a summarizer 4xx that is not a fallback case.
func writeUpstreamRejection(w http.ResponseWriter, err error, what string) {
	var ue *upstream.Error
	if errors.As(err, &ue) && ue.Kind == upstream.KindStatus {
		writeError(w, ue.Status, fmt.Sprintf("Failed to summarize %s: %s", what, ue.Body))
		return
	}
	writeError(w, http.StatusInternalServerError, fmt.Sprintf("Internal server error: %v", err))
}

func (e *SummarizeEndpoints) TextHandler(w http.ResponseWriter, r *http.Request) {
	var req textSummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "No text provided")
		return
	}
	if req.SummaryLength <= 0 {
		req.SummaryLength = defaultSummarySentences
	}

	var body map[string]any
	err := e.client.PostJSON(r.Context(), "/api/summarize-text", req, &body)
	switch {
	case err == nil:
		passThrough(w, body)
	case upstream.ShouldFallback(err):
		slog.Warn("Using local text summarizer", "kind", upstream.KindOf(err), "error", err)
		out := upstream.Fallback(summarizer.Summarize(req.Text, req.SummaryLength), SummarizerWarning, err)
		writeOutcome(w, out, summaryResponse{Summary: out.Value, Meta: out.Meta()})
	default:
		writeUpstreamRejection(w, err, "text")
	}
}

func (e *SummarizeEndpoints) PDFHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPDFBytes)
	if err := r.ParseMultipartForm(maxPDFBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read file")
		return
	}

	sentences := defaultSummarySentences
	if n, err := strconv.Atoi(r.FormValue("num_sentences")); err == nil && n > 0 {
		sentences = n
	}

	var body map[string]any
	err = e.client.PostMultipart(r.Context(), "/api/summarize", upstream.File{
		Field:    "file",
		Name:     header.Filename,
		Content:  bytes.NewReader(data),
		MimeType: header.Header.Get("Content-Type"),
	}, map[string]string{"num_sentences": strconv.Itoa(sentences)}, &body)
	switch {
	case err == nil:
		passThrough(w, body)
		return
	case !upstream.ShouldFallback(err):
		writeUpstreamRejection(w, err, "PDF")
		return
	}

	slog.Warn("Using local PDF summarizer", "kind", upstream.KindOf(err), "error", err, "filename", header.Filename)
	text, extractErr := summarizer.ExtractText(data)
	if extractErr != nil {
		slog.Error("Failed to extract PDF text", "error", extractErr, "filename", header.Filename)
		writeError(w, http.StatusUnprocessableEntity, "Could not extract text from PDF")
		return
	}

	out := upstream.Fallback(summarizer.Summarize(text, sentences), SummarizerWarning, err)
	writeOutcome(w, out, summaryResponse{Summary: out.Value, Filename: header.Filename, Meta: out.Meta()})
}
