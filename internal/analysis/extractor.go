// Package analysis turns a document's full text into a structured
// AnalysisReport via single-shot extraction from the completion capability.
//
// The model response is untrusted. Parsing is two-phase: decode into a loose
// structure and backfill missing fields, then construct the typed report,
// falling back to an all-empty report if anything still does not fit. A
// malformed response degrades, it never crashes a request.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"legal-doc-assistant/internal/config"
	"legal-doc-assistant/internal/llmservice"
	"legal-doc-assistant/internal/models"
	"legal-doc-assistant/internal/textstore"
)

type Extractor struct {
	texts       *textstore.Store
	completer   llmservice.Completer
	temperature float64
	maxTokens   int
	maxChars    int
}

func NewExtractor(texts *textstore.Store, completer llmservice.Completer, cfg *config.RAGConfig) *Extractor {
	return &Extractor{
		texts:       texts,
		completer:   completer,
		temperature: cfg.ReportTemp,
		maxTokens:   cfg.ReportMaxTokens,
		maxChars:    cfg.MaxAnalysisChars,
	}
}

// Analyze produces the structured report for one document. The only error
// it returns is textstore.ErrNotFound, when no extracted text exists at
// all; every downstream failure degrades to a best-effort or empty report.
func (e *Extractor) Analyze(ctx context.Context, docID string) (*models.AnalysisReport, error) {
	text, err := e.texts.Load(docID)
	if err != nil {
		return nil, err
	}
	if len(text) > e.maxChars {
		text = text[:e.maxChars]
	}

	prompt := fmt.Sprintf(models.AnalysisPromptTemplate, text)
	response, err := e.completer.Complete(ctx, prompt, e.temperature, e.maxTokens)
	if err != nil {
		log.Error().Err(err).Str("doc_id", docID).Msg("Analysis completion failed, returning empty report")
		return models.NewAnalysisReport(), nil
	}
	return parseReport(docID, response), nil
}

var codeFenceRe = regexp.MustCompile("```(?:json)?\\s*")

// cleanResponse strips code fences and narrows to the outermost brace span.
// Without braces the cleaned string is returned whole and left to the
// parser to reject.
func cleanResponse(response string) string {
	cleaned := strings.TrimSpace(codeFenceRe.ReplaceAllString(response, ""))
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		return cleaned[start : end+1]
	}
	return cleaned
}

func parseReport(docID, response string) *models.AnalysisReport {
	var data map[string]any
	if err := json.Unmarshal([]byte(cleanResponse(response)), &data); err != nil {
		log.Error().Err(err).Str("doc_id", docID).
			Str("response", truncate(response, 500)).
			Msg("Model response is not valid JSON, returning empty report")
		return models.NewAnalysisReport()
	}

	coerce(data)

	report := models.NewAnalysisReport()
	buf, err := json.Marshal(data)
	if err == nil {
		err = json.Unmarshal(buf, report)
	}
	if err != nil {
		log.Error().Err(err).Str("doc_id", docID).Msg("Coerced analysis still fails validation, returning empty report")
		return models.NewAnalysisReport()
	}
	return report
}

// coerce backfills every missing field with its empty default and drops
// risk entries that are not objects.
func coerce(data map[string]any) {
	backfill := func(key string, def any) {
		if _, ok := data[key]; !ok {
			data[key] = def
		}
	}
	backfill("summary", []any{})
	backfill("key_terms", []any{})
	backfill("obligations", map[string]any{})
	backfill("costs_and_payments", []any{})
	backfill("risks", []any{})
	backfill("red_flags", []any{})
	backfill("questions_to_ask", []any{})
	backfill("negotiation_suggestions", []any{})
	backfill("decision_assist", map[string]any{})

	if risks, ok := data["risks"].([]any); ok {
		valid := make([]any, 0, len(risks))
		for _, entry := range risks {
			risk, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			if _, ok := risk["title"]; !ok {
				risk["title"] = models.UntitledRisk
			}
			if _, ok := risk["why_it_matters"]; !ok {
				risk["why_it_matters"] = ""
			}
			if _, ok := risk["mitigations"]; !ok {
				risk["mitigations"] = []any{}
			}
			valid = append(valid, risk)
		}
		data["risks"] = valid
	}

	if assist, ok := data["decision_assist"].(map[string]any); ok {
		if _, ok := assist["pros"]; !ok {
			assist["pros"] = []any{}
		}
		if _, ok := assist["cons"]; !ok {
			assist["cons"] = []any{}
		}
		if _, ok := assist["overall_take"]; !ok {
			assist["overall_take"] = ""
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
