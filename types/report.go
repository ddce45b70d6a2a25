package types

// Article is one retrieved and summarized news item.
type Article struct {
	Headline string `json:"headline"`
	Source   string `json:"source"`
	Summary  string `json:"summary"`
}

// TrendAnalysis holds detected market trends and sentiment shifts.
type TrendAnalysis struct {
	Trends          []string `json:"trends"`
	SentimentShifts []string `json:"sentiment_shifts"`
}

// StrategyAdvice holds opportunities and strategic recommendations
// derived from the trend analysis.
type StrategyAdvice struct {
	Opportunities   []string `json:"opportunities"`
	Recommendations []string `json:"recommendations"`
}

// RiskAssessment holds risks, weak signals, and uncertainties derived
// by cross-referencing trends with proposed strategies.
type RiskAssessment struct {
	Risks         []string `json:"risks"`
	WeakSignals   []string `json:"weak_signals"`
	Uncertainties []string `json:"uncertainties"`
}

// Report is the terminal artifact of a successful run.
//
// VoiceScript is present iff the run requested voice output and the
// voice stage succeeded. Its absence is a degradation, not a failure.
type Report struct {
	Topic       string         `json:"topic"`
	Articles    []Article      `json:"articles"`
	Trends      TrendAnalysis  `json:"trends"`
	Strategy    StrategyAdvice `json:"strategy"`
	Risks       RiskAssessment `json:"risks"`
	VoiceScript string         `json:"voice_script,omitempty"`
}
