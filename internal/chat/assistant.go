package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/hamid26126/CashMate/internal/llm"
	"github.com/sirupsen/logrus"
)

// Source records which exit of the pipeline produced a reply.
type Source string

const (
	SourceUnavailable Source = "unavailable"
	SourceSimple      Source = "simple"
	SourceRateLimited Source = "rate_limited"
	SourceCache       Source = "cache"
	SourceModel       Source = "model"
	SourceFallback    Source = "fallback"
	SourceDegraded    Source = "degraded"
)

// Reply is the assistant's answer to one message.
type Reply struct {
	Text   string
	Source Source
}

// Config tunes the pipeline.
type Config struct {
	RecentWindow   int
	RequestTimeout time.Duration
	HistoryTurns   int
	HistoryChars   int
	// SimpleKeywords are answered locally without calling the model. Empty
	// disables the shortcut.
	SimpleKeywords []string
	Temperature    float64
	MaxTokens      int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		RecentWindow:   DefaultRecentWindow,
		RequestTimeout: 15 * time.Second,
		HistoryTurns:   2,
		HistoryChars:   500,
		Temperature:    0.7,
		MaxTokens:      256,
	}
}

// Assistant answers chat messages. The model is only called when the
// message is not simple, the user is within their rate limit and no fresh
// cached answer exists; every failure degrades to Fallback.
type Assistant struct {
	cfg      Config
	reader   FinanceReader
	model    llm.Completer
	limiter  *RateLimiter
	cache    *ResponseCache
	keywords []string
	log      logrus.FieldLogger
}

// NewAssistant wires the pipeline. limiter and cache are owned by the caller
// so their lifetime, and the reaper sweeping them, is managed at startup.
func NewAssistant(cfg Config, reader FinanceReader, model llm.Completer, limiter *RateLimiter, cache *ResponseCache, log logrus.FieldLogger) *Assistant {
	keywords := make([]string, 0, len(cfg.SimpleKeywords))
	for _, kw := range cfg.SimpleKeywords {
		if kw = normalizeMessage(kw); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return &Assistant{
		cfg:      cfg,
		reader:   reader,
		model:    model,
		limiter:  limiter,
		cache:    cache,
		keywords: keywords,
		log:      log.WithField("component", "chat"),
	}
}

// SendMessage runs the pipeline for one message. It always yields text; the
// only error returned is a store failure that prevents building the summary.
func (a *Assistant) SendMessage(ctx context.Context, userID, message string, history []Turn) (Reply, error) {
	log := a.log.WithField("user_id", userID)

	summary, err := a.buildSummary(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return a.exit(log, UnavailableText, SourceUnavailable), nil
		}
		return Reply{}, err
	}

	if a.isSimple(message) {
		return a.exit(log, Fallback(message, summary), SourceSimple), nil
	}

	if d := a.limiter.Allow(userID); !d.Allowed {
		log = log.WithField("retry_after", d.RetryAfterSeconds)
		return a.exit(log, Fallback(message, summary), SourceRateLimited), nil
	}

	if text, ok := a.cache.Get(userID, message); ok {
		return a.exit(log, text, SourceCache), nil
	}

	text, err := a.complete(ctx, summary, message, history)
	if err != nil {
		log.WithError(err).WithField("code", llm.CodeOf(err)).Warn("model call failed, using fallback")
		return a.degrade(log, message, summary), nil
	}

	a.cache.Put(userID, message, text)
	return a.exit(log, text, SourceModel), nil
}

func (a *Assistant) buildSummary(ctx context.Context, userID string) (*Summary, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	return BuildSummary(ctx, a.reader, userID, a.cfg.RecentWindow)
}

func (a *Assistant) complete(ctx context.Context, summary *Summary, message string, history []Turn) (string, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	messages := historyMessages(history, a.cfg.HistoryTurns, a.cfg.HistoryChars)
	messages = append(messages, llm.Message{Role: "user", Content: message})

	out, err := a.model.Complete(ctx, llm.Request{
		SystemPrompt: systemPrompt(summary),
		Messages:     messages,
		Temperature:  a.cfg.Temperature,
		MaxTokens:    a.cfg.MaxTokens,
	})
	if err != nil {
		return "", err
	}
	if out == nil || strings.TrimSpace(out.Text) == "" {
		return "", &llm.APIError{Code: llm.ErrEmptyResponse, Message: "completion is empty"}
	}
	return strings.TrimSpace(out.Text), nil
}

// degrade answers from the summary, or apologises when there is none.
func (a *Assistant) degrade(log logrus.FieldLogger, message string, summary *Summary) Reply {
	if summary == nil {
		return a.exit(log, ApologyText, SourceDegraded)
	}
	return a.exit(log, Fallback(message, summary), SourceFallback)
}

func (a *Assistant) isSimple(message string) bool {
	if len(a.keywords) == 0 {
		return false
	}
	normalized := normalizeMessage(message)
	for _, kw := range a.keywords {
		if strings.Contains(normalized, kw) {
			return true
		}
	}
	return false
}

func (a *Assistant) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.cfg.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.cfg.RequestTimeout)
}

func (a *Assistant) exit(log logrus.FieldLogger, text string, source Source) Reply {
	log.WithField("source", source).Debug("chat reply")
	return Reply{Text: text, Source: source}
}
