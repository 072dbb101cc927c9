// Package rag answers free-form questions from retrieved document chunks.
package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"legal-doc-assistant/internal/config"
	"legal-doc-assistant/internal/llmservice"
	"legal-doc-assistant/internal/models"
	"legal-doc-assistant/internal/vectorindex"
)

const (
	noDocumentsMsg  = "No documents available to answer your question."
	indexFailureMsg = "Error: Could not create vector store from documents. Please ensure documents are properly processed."
)

// Composer runs the query path: index, retrieve, prompt, complete. Every
// failure mode maps to a fixed user-facing string; nothing escapes as an
// error.
type Composer struct {
	builder     *vectorindex.Builder
	retriever   *vectorindex.Retriever
	completer   llmservice.Completer
	topK        int
	temperature float64
	maxTokens   int
}

func NewComposer(builder *vectorindex.Builder, retriever *vectorindex.Retriever, completer llmservice.Completer, cfg *config.RAGConfig) *Composer {
	return &Composer{
		builder:     builder,
		retriever:   retriever,
		completer:   completer,
		topK:        cfg.TopK,
		temperature: cfg.AnswerTemp,
		maxTokens:   cfg.AnswerMaxTokens,
	}
}

// Answer responds to a question from the given documents' content. With no
// documents it answers immediately without touching any capability.
func (c *Composer) Answer(ctx context.Context, docIDs []string, query string) string {
	if len(docIDs) == 0 {
		return noDocumentsMsg
	}

	idx, ok := c.builder.GetOrCreate(ctx, docIDs)
	if !ok {
		return indexFailureMsg
	}

	chunks, err := c.retriever.Search(ctx, idx, query, c.topK)
	if err != nil {
		log.Error().Err(err).Str("key", idx.Key).Msg("Retrieval failed")
		return answerError(err)
	}

	prompt := fmt.Sprintf(models.AnswerPromptTemplate, strings.Join(chunks, "\n\n"), query)
	answer, err := c.completer.Complete(ctx, prompt, c.temperature, c.maxTokens)
	if err != nil {
		log.Error().Err(err).Str("key", idx.Key).Msg("Answer completion failed")
		return answerError(err)
	}
	return answer
}

func answerError(err error) string {
	return fmt.Sprintf("Sorry, I encountered an error while processing your question: %v", err)
}
