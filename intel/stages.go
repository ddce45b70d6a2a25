package intel

import (
	"context"
	"fmt"
	"strings"

	"github.com/vantagehq/vantage/pipeline"
	"github.com/vantagehq/vantage/types"
)

const (
	newsSystemPrompt = "You are a concise financial news analyst. Summarise the article in one sentence."

	trendSystemPrompt = "You are a market research analyst specialising in trend detection. " +
		"Return ONLY valid JSON with two keys: " +
		"\"trends\" (list of 3 strings) and " +
		"\"sentiment_shifts\" (list of strings describing sentiment changes). " +
		"No markdown, no code fences."

	strategySystemPrompt = "You are a senior business strategist. " +
		"Return ONLY valid JSON with two keys: " +
		"\"opportunities\" (list of 3 business opportunity strings) and " +
		"\"recommendations\" (list of 3 strategic recommendation strings). " +
		"No markdown, no code fences."

	riskSystemPrompt = "You are a risk analyst specialising in emerging market threats. " +
		"Return ONLY valid JSON with three keys: " +
		"\"risks\" (list of 3 market risk strings), " +
		"\"weak_signals\" (list of 2 early warning signals), and " +
		"\"uncertainties\" (list of 2 major uncertainty factors). " +
		"No markdown, no code fences."

	voiceSystemPrompt = "You are a professional radio broadcaster. " +
		"Convert the market intelligence report into a concise 60-second verbal briefing. " +
		"Use natural, spoken language."
)

// newsStage searches recent news for the topic and summarizes each
// article in one sentence. An empty result set is not an error; the
// downstream stages receive an empty slice and produce degenerate
// analysis.
func newsStage(cfg Config) pipeline.StageFunc {
	return func(ctx context.Context, topic string, emit pipeline.Emitter, _ pipeline.Outputs) (any, error) {
		results, err := cfg.Searcher.Search(ctx, topic, cfg.MaxArticles)
		if err != nil {
			return nil, fmt.Errorf("news search: %w", err)
		}
		if len(results) == 0 {
			emit("No recent articles found; continuing with an empty set")
			return []types.Article{}, nil
		}

		if len(results) > cfg.MaxArticles {
			results = results[:cfg.MaxArticles]
		}
		articles := make([]types.Article, 0, len(results))
		for _, r := range results {
			user := fmt.Sprintf("Article title: %s\n\nContent: %s", r.Title, truncate(r.Content, maxContentChars))
			summary, err := cfg.LLM.Complete(ctx, newsSystemPrompt, user)
			if err != nil {
				return nil, fmt.Errorf("summarize %q: %w", truncate(r.Title, 40), err)
			}
			articles = append(articles, types.Article{
				Headline: r.Title,
				Source:   r.URL,
				Summary:  strings.TrimSpace(summary),
			})
			emit(fmt.Sprintf("Summarized: %s", truncate(r.Title, 80)))
		}
		return articles, nil
	}
}

func summarizeNews(out any) string {
	articles, _ := out.([]types.Article)
	return fmt.Sprintf("Collected %d articles", len(articles))
}

// trendStage distills the article summaries into 3 major trends and
// any sentiment shifts.
func trendStage(cfg Config) pipeline.StageFunc {
	return func(ctx context.Context, _ string, emit pipeline.Emitter, inputs pipeline.Outputs) (any, error) {
		articles, _ := inputs["news"].([]types.Article)

		var brief strings.Builder
		for _, a := range articles {
			fmt.Fprintf(&brief, "- [%s] %s: %s\n", a.Source, a.Headline, a.Summary)
		}

		user := fmt.Sprintf("News summaries:\n%s\nIdentify 3 major market trends and any notable sentiment shifts.", brief.String())
		raw, err := cfg.LLM.Complete(ctx, trendSystemPrompt, user)
		if err != nil {
			return nil, fmt.Errorf("trend analysis: %w", err)
		}

		out := &types.TrendAnalysis{}
		if err := decodeStructured(raw, out); err != nil {
			out = &types.TrendAnalysis{
				Trends:          []string{strings.TrimSpace(raw)},
				SentimentShifts: []string{unparseableNote},
			}
		}
		for i, t := range out.Trends {
			emit(fmt.Sprintf("Trend %d: %s", i+1, t))
		}
		return out, nil
	}
}

func summarizeTrends(out any) string {
	trends, _ := out.(*types.TrendAnalysis)
	if trends == nil {
		return "Trend analysis complete"
	}
	return fmt.Sprintf("Identified %d trends, %d sentiment shifts", len(trends.Trends), len(trends.SentimentShifts))
}

// strategyStage converts detected trends into opportunities and
// actionable recommendations.
func strategyStage(cfg Config) pipeline.StageFunc {
	return func(ctx context.Context, _ string, emit pipeline.Emitter, inputs pipeline.Outputs) (any, error) {
		trends, _ := inputs["trend"].(*types.TrendAnalysis)
		if trends == nil {
			trends = &types.TrendAnalysis{}
		}

		user := fmt.Sprintf(
			"Market Trends:\n%s\n\nSentiment Shifts:\n%s\n\nGenerate concrete business opportunities and strategic recommendations.",
			bulleted(trends.Trends), bulleted(trends.SentimentShifts),
		)
		raw, err := cfg.LLM.Complete(ctx, strategySystemPrompt, user)
		if err != nil {
			return nil, fmt.Errorf("strategy generation: %w", err)
		}

		out := &types.StrategyAdvice{}
		if err := decodeStructured(raw, out); err != nil {
			out = &types.StrategyAdvice{
				Opportunities:   []string{strings.TrimSpace(raw)},
				Recommendations: []string{unparseableNote},
			}
		}
		for i, o := range out.Opportunities {
			emit(fmt.Sprintf("Opportunity %d: %s", i+1, o))
		}
		return out, nil
	}
}

func summarizeStrategy(out any) string {
	advice, _ := out.(*types.StrategyAdvice)
	if advice == nil {
		return "Strategy generation complete"
	}
	return fmt.Sprintf("Identified %d opportunities, %d recommendations", len(advice.Opportunities), len(advice.Recommendations))
}

// riskStage cross-references trends with the proposed strategy to
// surface risks, weak signals, and uncertainties.
func riskStage(cfg Config) pipeline.StageFunc {
	return func(ctx context.Context, _ string, emit pipeline.Emitter, inputs pipeline.Outputs) (any, error) {
		trends, _ := inputs["trend"].(*types.TrendAnalysis)
		if trends == nil {
			trends = &types.TrendAnalysis{}
		}
		strategy, _ := inputs["strategy"].(*types.StrategyAdvice)
		if strategy == nil {
			strategy = &types.StrategyAdvice{}
		}

		user := fmt.Sprintf(
			"Market Trends:\n%s\n\nProposed Strategies:\n%s\n\nIdentify the key risks, weak signals, and uncertainties.",
			bulleted(trends.Trends), bulleted(strategy.Recommendations),
		)
		raw, err := cfg.LLM.Complete(ctx, riskSystemPrompt, user)
		if err != nil {
			return nil, fmt.Errorf("risk assessment: %w", err)
		}

		out := &types.RiskAssessment{}
		if err := decodeStructured(raw, out); err != nil {
			out = &types.RiskAssessment{
				Risks:         []string{strings.TrimSpace(raw)},
				WeakSignals:   []string{unparseableNote},
				Uncertainties: []string{unparseableNote},
			}
		}
		for i, r := range out.Risks {
			emit(fmt.Sprintf("Risk %d: %s", i+1, r))
		}
		return out, nil
	}
}

func summarizeRisks(out any) string {
	risks, _ := out.(*types.RiskAssessment)
	if risks == nil {
		return "Risk assessment complete"
	}
	return fmt.Sprintf("Identified %d risks, %d weak signals", len(risks.Risks), len(risks.WeakSignals))
}

// voiceStage condenses the analysis into a brief and asks the model
// for a 60-second broadcast script. Optional: its failure degrades the
// report instead of failing the run.
func voiceStage(cfg Config) pipeline.StageFunc {
	return func(ctx context.Context, topic string, emit pipeline.Emitter, inputs pipeline.Outputs) (any, error) {
		trends, _ := inputs["trend"].(*types.TrendAnalysis)
		strategy, _ := inputs["strategy"].(*types.StrategyAdvice)
		risks, _ := inputs["risk"].(*types.RiskAssessment)

		brief := VoiceBrief(topic, trends, strategy, risks)
		script, err := cfg.LLM.Complete(ctx, voiceSystemPrompt, brief)
		if err != nil {
			return nil, fmt.Errorf("voice script: %w", err)
		}
		emit("Voice script ready")
		return strings.TrimSpace(script), nil
	}
}

func bulleted(items []string) string {
	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "- %s\n", item)
	}
	return strings.TrimRight(b.String(), "\n")
}
