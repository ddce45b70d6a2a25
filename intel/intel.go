// Package intel implements the market-intelligence stage functions:
// news gathering, trend detection, strategy generation, risk
// assessment, and the optional voice briefing.
//
// Stages talk to two external collaborators, a news search API and a
// chat-completion model, through narrow interfaces so tests and the
// CLI can substitute either.
package intel

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/vantagehq/vantage/pipeline"
	"github.com/vantagehq/vantage/types"
)

// DefaultMaxArticles bounds how many news articles the news stage
// retrieves and summarizes per run.
const DefaultMaxArticles = 5

// maxContentChars truncates article content fed to the summarizer.
const maxContentChars = 1500

// SearchResult is one raw article returned by the news search API,
// before summarization.
type SearchResult struct {
	Title   string
	URL     string
	Content string
}

// NewsSearcher retrieves recent news articles for a query.
type NewsSearcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error)
}

// SearcherFunc adapts a function to the NewsSearcher interface.
type SearcherFunc func(ctx context.Context, query string, maxResults int) ([]SearchResult, error)

func (f SearcherFunc) Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	return f(ctx, query, maxResults)
}

// LLM is a single-turn chat completion.
type LLM interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Config wires the stage functions to their collaborators.
type Config struct {
	// LLM handles all reasoning and summarization calls.
	LLM LLM
	// Searcher retrieves recent news for the run's topic.
	Searcher NewsSearcher
	// MaxArticles bounds news retrieval (default 5).
	MaxArticles int
}

// Pipeline builds the standard five-stage market-intelligence pipeline:
// news -> trend -> strategy -> risk -> voice (optional).
func Pipeline(cfg Config) (*pipeline.Definition, error) {
	if cfg.LLM == nil {
		return nil, fmt.Errorf("intel pipeline requires an LLM")
	}
	if cfg.Searcher == nil {
		return nil, fmt.Errorf("intel pipeline requires a news searcher")
	}
	if cfg.MaxArticles <= 0 {
		cfg.MaxArticles = DefaultMaxArticles
	}

	return pipeline.New(
		pipeline.Stage{
			Name:      "news",
			Announce:  "Data agent: searching recent news",
			Run:       newsStage(cfg),
			Summarize: summarizeNews,
		},
		pipeline.Stage{
			Name:      "trend",
			Announce:  "Trend agent: detecting trends and sentiment shifts",
			Inputs:    []string{"news"},
			Run:       trendStage(cfg),
			Summarize: summarizeTrends,
		},
		pipeline.Stage{
			Name:      "strategy",
			Announce:  "Strategy agent: generating opportunities and recommendations",
			Inputs:    []string{"trend"},
			Run:       strategyStage(cfg),
			Summarize: summarizeStrategy,
		},
		pipeline.Stage{
			Name:      "risk",
			Announce:  "Risk agent: identifying risks and weak signals",
			Inputs:    []string{"trend", "strategy"},
			Run:       riskStage(cfg),
			Summarize: summarizeRisks,
		},
		pipeline.Stage{
			Name:     "voice",
			Announce: "Voice agent: writing broadcast script",
			Inputs:   []string{"trend", "strategy", "risk"},
			Optional: true,
			Run:      voiceStage(cfg),
		},
	)
}

// Assemble builds the terminal report from the accumulated stage
// outputs. Missing outputs leave their section zero-valued rather than
// failing the run: a degraded voice stage, or a future pipeline with
// fewer stages, still yields a report.
func Assemble(topic string, outs pipeline.Outputs) (*types.Report, error) {
	report := &types.Report{Topic: topic}
	if v, ok := outs["news"].([]types.Article); ok {
		report.Articles = v
	}
	if v, ok := outs["trend"].(*types.TrendAnalysis); ok {
		report.Trends = *v
	}
	if v, ok := outs["strategy"].(*types.StrategyAdvice); ok {
		report.Strategy = *v
	}
	if v, ok := outs["risk"].(*types.RiskAssessment); ok {
		report.Risks = *v
	}
	if v, ok := outs["voice"].(string); ok {
		report.VoiceScript = v
	}
	return report, nil
}

// VoiceBrief condenses the analytical outputs into the single-paragraph
// brief handed to the voice agent.
func VoiceBrief(topic string, trends *types.TrendAnalysis, strategy *types.StrategyAdvice, risks *types.RiskAssessment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Market Intelligence on '%s': ", topic)
	if trends != nil {
		b.WriteString(strings.Join(trends.Trends, " | "))
	}
	b.WriteString(". Opportunities: ")
	if strategy != nil {
		b.WriteString(strings.Join(strategy.Opportunities, "; "))
	}
	b.WriteString(". Key Risks: ")
	if risks != nil {
		b.WriteString(strings.Join(risks.Risks, "; "))
	}
	return b.String()
}

// truncate caps s at n bytes without splitting a multibyte rune: the
// cut lands on the last rune boundary at or before n.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
