package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lesson = "Plants make food through photosynthesis. Sunlight provides the energy for this process. " +
	"Chlorophyll in the leaves captures the light. Water and carbon dioxide are turned into glucose. " +
	"Oxygen is released as a by-product. Animals depend on this oxygen to breathe."

func TestTextSummarizeFallsBack(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	resp, body := env.post(t, "/api/text-summarize", map[string]any{"text": lesson, "summary_length": 2})
	require.Equal(t, http.StatusNonAuthoritativeInfo, resp.StatusCode)
	assert.Equal(t, "transport", resp.Header.Get(FallbackHeader))
	assert.Equal(t, "fallback", body["source"])
	assert.Equal(t, SummarizerWarning, body["warning"])
	assert.Equal(t, lesson, body["original_text"])
	assert.NotEmpty(t, body["summary"])
	assert.Less(t, body["summary_length"].(float64), body["original_length"].(float64))
}

func TestTextSummarizeRequiresText(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	resp, body := env.post(t, "/api/text-summarize", map[string]any{"text": "   "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "No text provided", body["error"])
}

func TestTextSummarizePassesThroughUpstream(t *testing.T) {
	var got map[string]any
	summarizerSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/summarize-text", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"summary":"Plants make food.","original_length":600,"summary_length":17}`))
	}))
	t.Cleanup(summarizerSrv.Close)
	env := newTestEnv(t, envOptions{summarizerURL: summarizerSrv.URL})

	resp, body := env.post(t, "/api/text-summarize", map[string]any{"text": lesson})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "upstream", body["source"])
	assert.Equal(t, "Plants make food.", body["summary"])
	assert.EqualValues(t, defaultSummarySentences, got["summary_length"])
}

func TestTextSummarizeRelaysRejection(t *testing.T) {
	summarizerSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "text too short", http.StatusBadRequest)
	}))
	t.Cleanup(summarizerSrv.Close)
	env := newTestEnv(t, envOptions{summarizerURL: summarizerSrv.URL})

	resp, body := env.post(t, "/api/text-summarize", map[string]any{"text": "Hi."})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Failed to summarize text: text too short", body["error"])
}

func TestPDFSummarizeRequiresFile(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("num_sentences", "3"))
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, env.server.URL+"/api/pdf-summarize", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := env.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "No file provided", body["error"])
}

// lessonPDF is a one page document that shows each line with Tj.
func lessonPDF(lines ...string) []byte {
	var content strings.Builder
	content.WriteString("BT\n/F1 12 Tf\n14 TL\n72 720 Td\n")
	for _, l := range lines {
		fmt.Fprintf(&content, "(%s) Tj\nT*\n", l)
	}
	content.WriteString("ET\n")

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 5 0 R >> >> /Contents 4 0 R >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", content.Len(), content.String()),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

var lessonLines = []string{
	"Plants make food through photosynthesis.",
	"Sunlight provides the energy for this process.",
	"Chlorophyll in the leaves captures the light.",
	"Water and carbon dioxide are turned into glucose.",
	"Oxygen is released as a by-product.",
	"Animals depend on this oxygen to breathe.",
}

func (e *testEnv) postPDF(t *testing.T, filename string, data []byte, sentences string) (*http.Response, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if sentences != "" {
		require.NoError(t, mw.WriteField("num_sentences", sentences))
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	header.Set("Content-Type", "application/pdf")
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, e.server.URL+"/api/pdf-summarize", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := e.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp, body
}

func TestPDFSummarizeFallsBackToLocalExtraction(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	resp, body := env.postPDF(t, "photosynthesis.pdf", lessonPDF(lessonLines...), "2")
	require.Equal(t, http.StatusNonAuthoritativeInfo, resp.StatusCode)
	assert.Equal(t, "transport", resp.Header.Get(FallbackHeader))
	assert.Equal(t, "fallback", body["source"])
	assert.Equal(t, SummarizerWarning, body["warning"])
	assert.Equal(t, "photosynthesis.pdf", body["filename"])

	original := body["original_text"].(string)
	assert.Contains(t, original, "Plants make food through photosynthesis.")
	assert.Contains(t, original, "Animals depend on this oxygen to breathe.")

	summary := body["summary"].(string)
	assert.NotEmpty(t, summary)
	assert.Less(t, len(summary), len(original))
	found := 0
	for _, line := range lessonLines {
		if strings.Contains(summary, line) {
			found++
		}
	}
	assert.Equal(t, 2, found)
}

func TestPDFSummarizeUnreadableFile(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	resp, body := env.postPDF(t, "broken.pdf", []byte("this is not a pdf at all"), "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "Could not extract text from PDF", body["error"])
}

func TestPDFSummarizePassesThroughUpstream(t *testing.T) {
	summarizerSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/summarize", r.URL.Path)
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		_, hdr, err := r.FormFile("file")
		if assert.NoError(t, err) {
			assert.Equal(t, "notes.pdf", hdr.Filename)
			assert.Equal(t, "application/pdf", hdr.Header.Get("Content-Type"))
		}
		assert.Equal(t, "4", r.FormValue("num_sentences"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"summary":"Plants make food.","filename":"notes.pdf"}`))
	}))
	t.Cleanup(summarizerSrv.Close)
	env := newTestEnv(t, envOptions{summarizerURL: summarizerSrv.URL})

	resp, body := env.postPDF(t, "notes.pdf", lessonPDF(lessonLines...), "4")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "upstream", body["source"])
	assert.Equal(t, "Plants make food.", body["summary"])
}
