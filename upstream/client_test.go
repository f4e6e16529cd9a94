package upstream

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_PostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/echo", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"got":` + string(body) + `}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", time.Second)
	var out struct {
		Got map[string]string `json:"got"`
	}
	require.NoError(t, c.PostJSON(context.Background(), "/api/echo", map[string]string{"a": "b"}, &out))
	assert.Equal(t, "b", out.Got["a"])
}

func TestClient_FailureKinds(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		kind    FailureKind
		status  int
	}{
		{
			name: "status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			kind:   KindStatus,
			status: http.StatusInternalServerError,
		},
		{
			name: "decode",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("<html>not json</html>"))
			},
			kind: KindDecode,
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(time.Second):
				}
			},
			kind: KindTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewClient(srv.URL, 50*time.Millisecond)
			var out map[string]any
			err := c.PostJSON(context.Background(), "/x", map[string]any{}, &out)
			require.Error(t, err)
			assert.Equal(t, tt.kind, KindOf(err))
			assert.Equal(t, tt.status, StatusOf(err))
		})
	}
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := NewClient(url, time.Second).Get(context.Background(), "/api/ping", nil)
	assert.Equal(t, KindTransport, KindOf(err))
	assert.True(t, ShouldFallback(err))
}

func TestClient_PostMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		data, _ := io.ReadAll(f)
		assert.Equal(t, "notes.pdf", hdr.Filename)
		assert.Equal(t, "application/pdf", hdr.Header.Get("Content-Type"))
		assert.Equal(t, "%PDF-1.4", string(data))
		assert.Equal(t, "3", r.FormValue("num_sentences"))
		w.Write([]byte(`{"summary":"ok"}`))
	}))
	defer srv.Close()

	var out map[string]string
	err := NewClient(srv.URL, time.Second).PostMultipart(context.Background(), "/api/summarize",
		File{Field: "file", Name: "notes.pdf", Content: strings.NewReader("%PDF-1.4"), MimeType: "application/pdf"},
		map[string]string{"num_sentences": "3"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "ok", out["summary"])
}

func TestClient_PostMultipartDefaultsContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		_, hdr, err := r.FormFile("file")
		if assert.NoError(t, err) {
			assert.Equal(t, `my "notes".pdf`, hdr.Filename)
			assert.Equal(t, "application/octet-stream", hdr.Header.Get("Content-Type"))
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	err := NewClient(srv.URL, time.Second).PostMultipart(context.Background(), "/api/summarize",
		File{Field: "file", Name: `my "notes".pdf`, Content: strings.NewReader("x")}, nil, nil)
	require.NoError(t, err)
}

func TestClient_ForwardPassesStatusThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte(`{"error":"short"}`))
	}))
	defer srv.Close()

	reply, err := NewClient(srv.URL, time.Second).Forward(context.Background(), http.MethodPost, "/api/process-frame", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, reply.Status)
	assert.JSONEq(t, `{"error":"short"}`, string(reply.Body))
}

func TestShouldFallback(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("x"), true},
		{"timeout", &Error{Kind: KindTimeout}, true},
		{"404", &Error{Kind: KindStatus, Status: 404}, true},
		{"500", &Error{Kind: KindStatus, Status: 500}, true},
		{"503", &Error{Kind: KindStatus, Status: 503}, true},
		{"400", &Error{Kind: KindStatus, Status: 400}, false},
		{"422", &Error{Kind: KindStatus, Status: 422}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldFallback(tt.err))
		})
	}
}

func TestClient_PostRawKeepsBody(t *testing.T) {
	raw := `{"session_id":1234,"answer":"x"}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, raw, string(body))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	var out struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, NewClient(srv.URL, time.Second).PostRaw(context.Background(), "/api/x", []byte(raw), &out))
	assert.True(t, out.OK)
}
