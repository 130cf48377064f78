package analysis

import (
	"context"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/yanqian/label-insight/pkg/errors"
	"github.com/yanqian/label-insight/pkg/metrics"
)

// Service runs the label pipeline from either entry point.
type Service interface {
	AnalyzeImage(ctx context.Context, req ImageRequest) (Result, error)
	AnalyzeText(ctx context.Context, req TextRequest) (Result, error)
}

type service struct {
	preprocessor Preprocessor
	extractor    TextExtractor
	client       *Client
	tokens       TokenCounter
	observer     Observer
	logger       *slog.Logger
}

// NewService constructs the pipeline. tokens and observer may be nil.
func NewService(preprocessor Preprocessor, extractor TextExtractor, client *Client, tokens TokenCounter, observer Observer, logger *slog.Logger) Service {
	if client == nil {
		client = NewUnconfiguredClient(DefaultProvider)
	}
	if tokens == nil {
		tokens = approxCounter{}
	}
	if observer == nil {
		observer = noopObserver{}
	}
	return &service{
		preprocessor: preprocessor,
		extractor:    extractor,
		client:       client,
		tokens:       tokens,
		observer:     observer,
		logger:       logger.With("component", "analysis.service"),
	}
}

func (s *service) AnalyzeImage(ctx context.Context, req ImageRequest) (Result, error) {
	start := time.Now()
	result, err := s.analyzeImage(ctx, req)
	s.record(SourceImage, start, err)
	return result, err
}

func (s *service) AnalyzeText(ctx context.Context, req TextRequest) (Result, error) {
	start := time.Now()
	result, err := s.analyze(ctx, req.Text, req.Profile)
	s.record(SourceText, start, err)
	return result, err
}

func (s *service) analyzeImage(ctx context.Context, req ImageRequest) (Result, error) {
	if strings.TrimSpace(req.Path) == "" {
		return nil, InvalidInput("image path is required")
	}
	img := s.preprocessor.Preprocess(ctx, req.Path)
	text, err := s.extractor.Extract(ctx, img)
	if err != nil {
		if !apperrors.IsCode(err, CodeOCRFailed) {
			err = OCRError(err)
		}
		return nil, err
	}
	s.logger.Debug("label text extracted", "chars", len(text))
	return s.analyze(ctx, text, req.Profile)
}

func (s *service) analyze(ctx context.Context, text string, profile Profile) (Result, error) {
	prompt := BuildPrompt(text, profile)
	usage := metrics.EstimatedPrompt(s.tokens.Count(prompt))
	s.observer.ObservePromptTokens(usage.PromptTokens)
	s.logger.Debug("prompt built", "provider", s.client.Provider(), "personalized", len(FormatProfile(profile)) > 0, "prompt_tokens", usage.PromptTokens)

	raw, err := s.client.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return ParseResponse(raw, s.logger)
}

func (s *service) record(source string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = apperrors.CodeOf(err)
		if outcome == "" {
			outcome = CodeUnexpectedFailure
		}
		s.logger.Warn("analysis failed", "source", source, "code", outcome, "error", err)
	}
	s.observer.ObserveAnalysis(source, outcome, time.Since(start))
}

// approxCounter is the fallback estimate of roughly four characters per token.
type approxCounter struct{}

func (approxCounter) Count(text string) int {
	return (len(text) + 3) / 4
}

type noopObserver struct{}

func (noopObserver) ObserveAnalysis(string, string, time.Duration) {}
func (noopObserver) ObservePromptTokens(int)                       {}
