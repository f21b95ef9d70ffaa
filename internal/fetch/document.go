package fetch

import (
	"bytes"
	"context"
	"mime"
	"net/http"
	"strings"
	"unicode/utf8"
)

// Kind classifies a fetched document.
type Kind string

const (
	KindPDF   Kind = "pdf"
	KindHTML  Kind = "html"
	KindText  Kind = "text"
	KindOther Kind = "binary"
)

var pdfMagic = []byte("%PDF-")

// DetectKind classifies a document by its magic bytes, then by Content-Type,
// then by content sniffing.
func DetectKind(contentType string, body []byte) Kind {
	if bytes.HasPrefix(bytes.TrimLeft(body, " \t\r\n"), pdfMagic) {
		return KindPDF
	}

	mediaType, _, _ := mime.ParseMediaType(contentType)
	switch {
	case mediaType == "application/pdf":
		return KindPDF
	case mediaType == "text/html" || mediaType == "application/xhtml+xml":
		return KindHTML
	case strings.HasPrefix(mediaType, "text/"):
		return KindText
	}

	sniffed := http.DetectContentType(body)
	switch {
	case strings.HasPrefix(sniffed, "application/pdf"):
		return KindPDF
	case strings.HasPrefix(sniffed, "text/html"):
		return KindHTML
	case strings.HasPrefix(sniffed, "text/"):
		return KindText
	case utf8.Valid(body):
		return KindText
	}
	return KindOther
}

// DocumentExtractor downloads a resume and returns its text.
type DocumentExtractor struct {
	PDF     PDFExtractor
	Options *Options
}

// NewDocumentExtractor creates a DocumentExtractor using pdf for PDF documents.
func NewDocumentExtractor(pdf PDFExtractor, opts *Options) *DocumentExtractor {
	if pdf == nil {
		pdf = &PopplerExtractor{}
	}
	return &DocumentExtractor{PDF: pdf, Options: opts}
}

// ExtractText fetches urlStr and converts it to plain text by document kind.
func (d *DocumentExtractor) ExtractText(ctx context.Context, urlStr string) (string, error) {
	result, err := URL(ctx, urlStr, d.Options)
	if err != nil {
		return "", err
	}

	switch DetectKind(result.ContentType, result.Body) {
	case KindPDF:
		text, err := d.PDF.ExtractPDF(ctx, result.Body)
		if err != nil {
			return "", &Error{URL: urlStr, Message: "could not parse PDF structure", Cause: err}
		}
		return text, nil
	case KindHTML:
		text, err := ExtractMainText(result.HTML(), ResumeSelectors())
		if err != nil {
			return "", &Error{URL: urlStr, Message: "could not parse HTML", Cause: err}
		}
		return text, nil
	case KindText:
		return string(result.Body), nil
	default:
		return "", &Error{URL: urlStr, Message: "unsupported document type " + result.ContentType}
	}
}
