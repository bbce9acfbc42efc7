package assistant

import "time"

type GenerateRequest struct {
	Prompt  string         `json:"prompt" validate:"required,min=10,max=2000"`
	Context map[string]any `json:"context"`
}

type Generated struct {
	GeneratedText string    `json:"generatedText"`
	Prompt        string    `json:"prompt"`
	Model         string    `json:"model"`
	Timestamp     time.Time `json:"timestamp"`
}

type CriteriaInput struct {
	Inclusion []string `json:"inclusion"`
	Exclusion []string `json:"exclusion"`
}

type AnalyzeRequest struct {
	Criteria     *CriteriaInput `json:"criteria" validate:"required"`
	StudyContext map[string]any `json:"studyContext"`
}

type CriteriaReview struct {
	Count           int      `json:"count"`
	Complexity      string   `json:"complexity"`
	Recommendations []string `json:"recommendations"`
}

type EnrollmentEstimate struct {
	Minimum    int     `json:"minimum"`
	Maximum    int     `json:"maximum"`
	Confidence float64 `json:"confidence"`
}

type AnalysisResults struct {
	InclusionCriteria   CriteriaReview     `json:"inclusionCriteria"`
	ExclusionCriteria   CriteriaReview     `json:"exclusionCriteria"`
	EstimatedEnrollment EnrollmentEstimate `json:"estimatedEnrollment"`
}

type CriteriaAnalysis struct {
	AnalysisResults AnalysisResults `json:"analysisResults"`
	Suggestions     []string        `json:"suggestions"`
	Narrative       string          `json:"narrative,omitempty"`
}

type OptimizeRequest struct {
	StudyID         string         `json:"studyId"`
	CurrentCriteria map[string]any `json:"currentCriteria"`
}

type Optimization struct {
	Type       string  `json:"type"`
	Priority   string  `json:"priority"`
	Suggestion string  `json:"suggestion"`
	Impact     string  `json:"impact"`
	Confidence float64 `json:"confidence"`
}

type Timeline struct {
	CurrentProjection   string `json:"currentProjection"`
	OptimizedProjection string `json:"optimizedProjection"`
	Improvement         string `json:"improvement"`
}

type Optimizations struct {
	StudyID       string         `json:"studyId"`
	Optimizations []Optimization `json:"optimizations"`
	Timeline      Timeline       `json:"timeline"`
	Narrative     string         `json:"narrative,omitempty"`
}

type DocumentRequest struct {
	DocumentText string `json:"documentText" validate:"max=100000"`
	AnalysisType string `json:"analysisType" validate:"max=100"`
}

type Entity struct {
	Type       string  `json:"type"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

type Sentiment struct {
	Overall    string  `json:"overall"`
	Confidence float64 `json:"confidence"`
}

type DocumentAnalysis struct {
	AnalysisType      string    `json:"analysisType"`
	DocumentLength    int       `json:"documentLength"`
	KeyInsights       []string  `json:"keyInsights"`
	ExtractedEntities []Entity  `json:"extractedEntities"`
	Sentiment         Sentiment `json:"sentiment"`
	Summary           string    `json:"summary"`
}

type ChatRequest struct {
	Message             string           `json:"message" validate:"required,min=1,max=1000"`
	ConversationHistory []map[string]any `json:"conversationHistory"`
	Context             map[string]any   `json:"context"`
}

type ChatReply struct {
	Message     string         `json:"message"`
	MessageID   string         `json:"messageId"`
	Timestamp   time.Time      `json:"timestamp"`
	Context     map[string]any `json:"context"`
	Suggestions []string       `json:"suggestions"`
}
