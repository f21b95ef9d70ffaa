package fetch

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// PostingOptions configures job posting retrieval.
type PostingOptions struct {
	Fetch          *Options
	UseBrowser     bool
	BrowserTimeout time.Duration
	Logger         *zap.Logger
}

// Posting fetches a job posting page and returns its main text using
// platform-specific selectors. With UseBrowser it re-renders pages whose
// static HTML yields too little text.
func Posting(ctx context.Context, urlStr string, opts PostingOptions) (string, Platform, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	platform := DetectPlatform(urlStr)
	result, err := URL(ctx, urlStr, opts.Fetch)
	if err != nil {
		return "", platform, err
	}

	content := PlatformContentSelectors(platform)
	noise := PlatformNoiseSelectors(platform)

	text, err := ExtractMainText(result.HTML(), content, noise...)
	if err != nil {
		return "", platform, fmt.Errorf("content extraction failed: %w", err)
	}

	if opts.UseBrowser && ShouldUseBrowser(text) {
		timeout := opts.BrowserTimeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		logger.Info("posting text too short, rendering in browser",
			zap.Int("chars", len(text)), zap.String("platform", string(platform)))

		html, browserErr := WithBrowser(ctx, urlStr, timeout, logger)
		if browserErr != nil {
			logger.Warn("browser rendering failed, using static HTML", zap.Error(browserErr))
		} else if rendered, extractErr := ExtractMainText(html, content, noise...); extractErr == nil {
			text = rendered
		}
	}

	return text, platform, nil
}
