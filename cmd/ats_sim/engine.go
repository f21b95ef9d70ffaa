package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/ats-simulator/internal/config"
	"github.com/jonathan/ats-simulator/internal/fetch"
	"github.com/jonathan/ats-simulator/internal/llm"
	"github.com/jonathan/ats-simulator/internal/parsing"
	"github.com/jonathan/ats-simulator/internal/pipeline"
	"github.com/jonathan/ats-simulator/internal/taxonomy"
)

// buildEngine wires the engine from configuration. local marks a CLI run on
// the caller's own machine; see fetchOptions. The returned cleanup releases
// the LLM client when posting expansion is enabled.
func buildEngine(ctx context.Context, cfg *config.Config, tax *taxonomy.Taxonomy, logger *zap.Logger, onProgress pipeline.ProgressCallback, local bool) (*pipeline.Engine, func(), error) {
	cleanup := func() {}

	opts := pipeline.DefaultOptions(tax)
	opts.Settings = cfg.Settings()
	opts.Weights = cfg.Scoring.LayerWeights()
	opts.GateThreshold = cfg.Scoring.GateThreshold
	opts.PDFTimeout = cfg.Engine.PDFTimeout
	opts.RequestTimeout = cfg.Engine.RequestTimeout
	opts.Logger = logger
	opts.OnProgress = onProgress
	opts.Extractor = fetch.NewDocumentExtractor(pdfExtractor(cfg.PDF), fetchOptions(cfg, local))

	if cfg.LLM.ExpandShortPostings {
		if cfg.LLM.APIKey == "" {
			return nil, cleanup, fmt.Errorf("llm.expand_short_postings requires llm.api_key (ATS_LLM_API_KEY)")
		}
		llmCfg := llm.DefaultConfig().WithModel(cfg.LLM.Model)
		llmCfg.Timeout = cfg.LLM.Timeout
		client, err := llm.NewGeminiClient(ctx, llmCfg, cfg.LLM.APIKey)
		if err != nil {
			return nil, cleanup, fmt.Errorf("failed to create LLM client: %w", err)
		}
		cleanup = func() { _ = client.Close() }
		opts.Expander = parsing.NewExpander(client, logger)
	}

	engine, err := pipeline.NewEngine(opts)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	return engine, cleanup, nil
}

// fetchOptions returns the options for resume and posting URLs. Local runs
// may read files and private hosts; the server reads private hosts only when
// pdf.allow_private_hosts is set, and never files.
func fetchOptions(cfg *config.Config, local bool) *fetch.Options {
	opts := fetch.DefaultOptions()
	opts.AllowFiles = local
	opts.AllowPrivateHosts = local || cfg.PDF.AllowPrivateHosts
	return opts
}

func pdfExtractor(cfg config.PDFConfig) fetch.PDFExtractor {
	if cfg.Extractor == config.ExtractorService {
		return fetch.NewServiceExtractor(cfg.ServiceURL, cfg.ServiceToken)
	}
	return &fetch.PopplerExtractor{}
}

// cacheSalt lists the settings that change scoring, so cached results are
// keyed to the configuration and vocabulary that produced them.
func cacheSalt(cfg *config.Config, tax *taxonomy.Taxonomy) map[string]string {
	weights := make([]string, 0, len(cfg.Scoring.Weights))
	for id, w := range cfg.Scoring.Weights {
		weights = append(weights, id+"="+strconv.FormatFloat(w, 'g', -1, 64))
	}
	sort.Strings(weights)

	return map[string]string{
		"weights":  strings.Join(weights, ","),
		"gate":     strconv.Itoa(cfg.Scoring.GateThreshold),
		"settings": fmt.Sprintf("%+v", cfg.Settings()),
		"taxonomy": tax.Digest(),
		"expand":   strconv.FormatBool(cfg.LLM.ExpandShortPostings) + ":" + cfg.LLM.Model,
	}
}
