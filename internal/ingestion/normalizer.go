package ingestion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/ats-simulator/internal/types"
)

// DefaultTimeout bounds document extraction when none is configured.
const DefaultTimeout = 5 * time.Second

// Warnings attached to a ResumeDocument when the document could not be read.
const (
	WarningUnreadable   = "could not download or parse resume document"
	WarningNoText       = "no parsable text found (scanned image-only PDF, security restrictions, or non-standard font encoding)"
	WarningNoExtractor  = "no document extractor configured"
	warningTimeoutShape = "document extraction timed out after %s"
)

// TextExtractor fetches a referenced resume document and returns its text.
type TextExtractor interface {
	ExtractText(ctx context.Context, url string) (string, error)
}

// Normalizer turns a resume source into a ResumeDocument and a parsing
// confidence score. It never fails: unreadable documents yield an empty
// document with confidence 0 and an explanatory warning.
type Normalizer struct {
	extractor TextExtractor
	timeout   time.Duration
	logger    *zap.Logger
}

// NewNormalizer creates a Normalizer. extractor may be nil when only text
// sources are expected.
func NewNormalizer(extractor TextExtractor, timeout time.Duration, logger *zap.Logger) *Normalizer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{extractor: extractor, timeout: timeout, logger: logger}
}

// Normalize ingests src and returns the document with its confidence score.
func (n *Normalizer) Normalize(ctx context.Context, src types.ResumeSource) (*types.ResumeDocument, int) {
	switch s := src.(type) {
	case types.TextSource:
		return NormalizeText(types.SourceText, s.Text)
	case *types.TextSource:
		if s != nil {
			return NormalizeText(types.SourceText, s.Text)
		}
	case types.URLSource:
		return n.normalizeURL(ctx, s.URL)
	case *types.URLSource:
		if s != nil {
			return n.normalizeURL(ctx, s.URL)
		}
	}
	return failedDocument(types.SourceText, WarningNoText), 0
}

func (n *Normalizer) normalizeURL(ctx context.Context, url string) (*types.ResumeDocument, int) {
	if n.extractor == nil {
		n.logger.Warn("resume url supplied without an extractor", zap.String("url", url))
		return failedDocument(types.SourcePDFReference, WarningNoExtractor), 0
	}

	text, err := n.extract(ctx, url)
	if err != nil {
		warning := WarningUnreadable
		if errors.Is(err, context.DeadlineExceeded) {
			warning = fmt.Sprintf(warningTimeoutShape, n.timeout)
		}
		n.logger.Warn("resume extraction failed",
			zap.String("url", url),
			zap.Duration("timeout", n.timeout),
			zap.Error(err))
		return failedDocument(types.SourcePDFReference, warning), 0
	}

	return NormalizeText(types.SourcePDFReference, text)
}

type extraction struct {
	text string
	err  error
}

// extract runs the extractor under the normalizer timeout. The result is
// abandoned at the deadline even if the extractor ignores ctx.
func (n *Normalizer) extract(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	done := make(chan extraction, 1)
	go func() {
		text, err := n.extractor.ExtractText(ctx, url)
		done <- extraction{text: text, err: err}
	}()

	select {
	case res := <-done:
		return res.text, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// NormalizeText cleans raw text, segments it and scores it. It is pure and
// deterministic.
func NormalizeText(kind types.SourceKind, raw string) (*types.ResumeDocument, int) {
	normalized := CleanText(raw)
	if normalized == "" {
		doc := failedDocument(kind, WarningNoText)
		doc.RawText = raw
		return doc, 0
	}

	sections := Segment(normalized)
	return &types.ResumeDocument{
		SourceKind:     kind,
		RawText:        raw,
		NormalizedText: normalized,
		Sections:       sections,
	}, Confidence(raw, normalized, sections)
}

func failedDocument(kind types.SourceKind, warning string) *types.ResumeDocument {
	return &types.ResumeDocument{
		SourceKind:        kind,
		Sections:          []types.Section{},
		ExtractionWarning: strings.TrimSpace(warning),
	}
}
