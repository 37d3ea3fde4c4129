package live

import "github.com/islatechai-lang/cryptoomind/models"

// Client frame types.
const (
	frameAnalyze = "analyze"
	frameAck     = "ack"

	eventThinkingComplete = "aiThinkingComplete"
)

// Server frame types.
const (
	frameStage   = "stage"
	frameThought = "thought"
	frameVerdict = "verdict"
	frameNotice  = "notice"
)

// clientFrame covers both inbound frame shapes; Type selects which fields
// matter.
type clientFrame struct {
	Type      string `json:"type"`
	Pair      string `json:"pair,omitempty"`
	Timeframe string `json:"timeframe,omitempty"`
	Event     string `json:"event,omitempty"`
}

type stageFrame struct {
	Type  string               `json:"type"`
	Stage models.AnalysisStage `json:"stage"`
}

type thoughtFrame struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type verdictFrame struct {
	Type   string                   `json:"type"`
	Result *models.PredictionResult `json:"result"`
}

type noticeFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
