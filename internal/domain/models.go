package domain

import (
	"strings"
	"time"
)

// Source identifies a single input paper, either a local file path or a URL.
type Source struct {
	Raw       string // As given on the command line
	LocalPath string // Path to the PDF on disk after fetching
	IsRemote  bool
}

// NewSource classifies a raw input string as a URL or a local path.
func NewSource(raw string) Source {
	trimmed := strings.TrimSpace(raw)
	remote := strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://")
	return Source{
		Raw:      trimmed,
		IsRemote: remote,
	}
}

// MarkdownDocument is the output of the content extraction step.
type MarkdownDocument struct {
	Source   string `json:"source"`
	Markdown string `json:"markdown"`
	Pages    int    `json:"pages,omitempty"`
	FromCache bool  `json:"-"`
}

// Summary holds summaries of a paper at three reading levels.
type Summary struct {
	ELI5Summary     string `json:"eli5_summary"`
	BasicSummary    string `json:"basic_summary"`
	AdvancedSummary string `json:"advanced_summary"`
}

// KeyInsight is a single major takeaway from a paper.
type KeyInsight struct {
	Insight      string   `json:"insight"`
	Significance string   `json:"significance"`
	Implications []string `json:"implications"`
}

// ConceptExplanation explains one technical term from a paper.
type ConceptExplanation struct {
	Concept           string   `json:"concept"`
	SimpleExplanation string   `json:"simple_explanation"`
	Analogies         []string `json:"analogies"`
	Prerequisites     []string `json:"prerequisites"`
}

// CriticalAnalysis is a balanced assessment of the work.
type CriticalAnalysis struct {
	Strengths             []string `json:"strengths"`
	Limitations           []string `json:"limitations"`
	Assumptions           []string `json:"assumptions"`
	MethodologyAssessment string   `json:"methodology_assessment"`
}

// ConnectionMapping places the paper in the broader research landscape.
type ConnectionMapping struct {
	PriorWork             []string `json:"prior_work"`
	RelatedFields         []string `json:"related_fields"`
	FutureDirections      []string `json:"future_directions"`
	PracticalApplications []string `json:"practical_applications"`
}

// ComprehensionAid guides a reader through the paper.
type ComprehensionAid struct {
	ReadingRoadmap  []string `json:"reading_roadmap"`
	FocusAreas      []string `json:"focus_areas"`
	SkipSuggestions []string `json:"skip_suggestions"`
}

// PaperRecord is the structured record produced for each paper.
type PaperRecord struct {
	Source              string               `json:"source"`
	Title               string               `json:"title"`
	Authors             []string             `json:"authors"`
	Summary             Summary              `json:"summary"`
	ComprehensionAid    ComprehensionAid     `json:"comprehension_aid"`
	ConnectionMapping   ConnectionMapping    `json:"connection_mapping"`
	KeyInsights         []KeyInsight         `json:"key_insights"`
	ConceptExplanations []ConceptExplanation `json:"concept_explanations"`
	CriticalAnalysis    CriticalAnalysis     `json:"critical_analysis"`
	FutureWork          string               `json:"future_work"`
}

// EventType represents the type of stream event
type EventType string

const (
	EventStart      EventType = "start"
	EventFetching   EventType = "fetching"
	EventExtracting EventType = "extracting"
	EventSummarizing EventType = "summarizing"
	EventRecordDone EventType = "record_done"
	EventPublishing EventType = "publishing"
	EventError      EventType = "error"
	EventComplete   EventType = "complete"
)

// StreamEvent represents an event emitted during a pipeline run
type StreamEvent struct {
	Type      EventType   `json:"type"`
	Source    string      `json:"source,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// RunStats contains metadata about the pipeline execution
type RunStats struct {
	TotalTime time.Duration
	Processed int
	Succeeded int
	Failed    int
	CacheHits int
	Errors    []error
}
