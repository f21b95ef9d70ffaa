package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"strings"
	"time"
)

// PDFExtractor converts PDF bytes to plain text.
type PDFExtractor interface {
	ExtractPDF(ctx context.Context, data []byte) (string, error)
}

// ErrPDFToolMissing is returned when the pdftotext binary is not installed.
var ErrPDFToolMissing = errors.New("pdftotext not found in PATH")

// PopplerExtractor runs poppler's pdftotext on the document.
type PopplerExtractor struct {
	// Binary defaults to "pdftotext".
	Binary string
	// Layout preserves the physical layout of the page.
	Layout bool
}

// ExtractPDF implements PDFExtractor. The process is killed when ctx is done.
func (p *PopplerExtractor) ExtractPDF(ctx context.Context, data []byte) (string, error) {
	binary := p.Binary
	if binary == "" {
		binary = "pdftotext"
	}
	path, err := exec.LookPath(binary)
	if err != nil {
		return "", ErrPDFToolMissing
	}

	args := []string{"-enc", "UTF-8"}
	if p.Layout {
		args = append(args, "-layout")
	}
	args = append(args, "-", "-")

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdin = bytes.NewReader(data)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("pdftotext timed out: %w", ctx.Err())
		}
		return "", fmt.Errorf("pdftotext failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	return stdout.String(), nil
}

// ServiceExtractor posts the document to a remote extraction service and
// reads {"text": "..."} back.
type ServiceExtractor struct {
	Endpoint   string
	Token      string
	HTTPClient *http.Client
}

// NewServiceExtractor creates a client for the extraction service at endpoint.
func NewServiceExtractor(endpoint, token string) *ServiceExtractor {
	return &ServiceExtractor{
		Endpoint:   strings.TrimRight(endpoint, "/"),
		Token:      token,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type serviceResponse struct {
	Text    string `json:"text"`
	Message string `json:"msg,omitempty"`
}

// ExtractPDF implements PDFExtractor.
func (s *ServiceExtractor) ExtractPDF(ctx context.Context, data []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint+"/extract", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/pdf")
	req.Header.Set("Accept", "application/json")
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	client := s.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var result serviceResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("extraction service error (status %d): %s", resp.StatusCode, result.Message)
	}

	return result.Text, nil
}
