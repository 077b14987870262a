package chatbot

import (
	"context"
	"fmt"

	"github.com/code-gritt/klientel/pkg/ai/llm"
	"github.com/code-gritt/klientel/pkg/analytics"
	"github.com/code-gritt/klientel/pkg/logger"
	"github.com/code-gritt/klientel/pkg/metrics"
	"github.com/code-gritt/klientel/pkg/store"
)

// QueryCostCredits is deducted from the user's balance per chatbot query.
const QueryCostCredits = 2

type Store interface {
	ListLeadsByUser(ctx context.Context, userID int) ([]store.Lead, error)
	DeductCredits(ctx context.Context, userID, amount int) (int, error)
}

type PipelineReader interface {
	PipelineMetrics(ctx context.Context, userID int) ([]analytics.Metric, error)
}

// Service answers natural-language questions about the user's pipeline by
// grounding an LLM call in their leads and funnel report.
type Service struct {
	store    Store
	pipeline PipelineReader
	llm      llm.Client
	log      logger.Logger
	metrics  *metrics.Metrics
}

func NewService(s Store, pipeline PipelineReader, client llm.Client, log logger.Logger, m *metrics.Metrics) *Service {
	return &Service{store: s, pipeline: pipeline, llm: client, log: log, metrics: m}
}

// Ask charges credits, assembles the pipeline context and returns the
// model's answer.
func (s *Service) Ask(ctx context.Context, userID int, query string) (string, error) {
	if query == "" {
		return "", fmt.Errorf("empty query")
	}

	if _, err := s.store.DeductCredits(ctx, userID, QueryCostCredits); err != nil {
		return "", err
	}

	leads, err := s.store.ListLeadsByUser(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("list leads: %w", err)
	}
	report, err := s.pipeline.PipelineMetrics(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("pipeline metrics: %w", err)
	}

	answer, err := s.llm.Complete(ctx, buildPrompt(query, leads, report), systemPrompt)
	if err != nil {
		return "", err
	}

	s.metrics.RecordChatbotRequest()
	s.log.Info("chatbot query answered", "user_id", userID)
	return answer, nil
}
