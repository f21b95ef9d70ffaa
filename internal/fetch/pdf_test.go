package fetch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceExtractor_ExtractPDF(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/extract", r.URL.Path)
		assert.Equal(t, "application/pdf", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "%PDF-1.4", string(body))

		_ = json.NewEncoder(w).Encode(map[string]string{"text": "Jane Doe"})
	}))
	defer server.Close()

	extractor := NewServiceExtractor(server.URL+"/", "secret")
	text, err := extractor.ExtractPDF(context.Background(), []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", text)
}

func TestServiceExtractor_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr string
	}{
		{
			name: "service error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
				_, _ = w.Write([]byte(`{"msg":"encrypted document"}`))
			},
			wantErr: "encrypted document",
		},
		{
			name: "invalid json",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`not json`))
			},
			wantErr: "failed to parse response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			_, err := NewServiceExtractor(server.URL, "").ExtractPDF(context.Background(), []byte("%PDF"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestServiceExtractor_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewServiceExtractor(server.URL, "").ExtractPDF(ctx, []byte("%PDF"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPopplerExtractor_MissingBinary(t *testing.T) {
	p := &PopplerExtractor{Binary: "pdftotext-does-not-exist"}
	_, err := p.ExtractPDF(context.Background(), []byte("%PDF"))
	assert.ErrorIs(t, err, ErrPDFToolMissing)
}

func TestPopplerExtractor_InvalidPDF(t *testing.T) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		t.Skip("pdftotext not installed")
	}

	p := &PopplerExtractor{}
	_, err := p.ExtractPDF(context.Background(), []byte("not a pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdftotext failed")
}
