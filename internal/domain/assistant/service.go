package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

type Service struct {
	responder Responder
	logger    zerolog.Logger
	now       func() time.Time
}

func NewService(r Responder, logger zerolog.Logger) *Service {
	return &Service{responder: r, logger: logger, now: time.Now}
}

func (s *Service) respond(ctx context.Context, p Prompt) (string, error) {
	start := s.now()
	out, err := s.responder.Respond(ctx, p)
	if err != nil {
		s.logger.Warn().Err(err).Str("task", p.Task).Str("model", s.responder.Model()).Msg("assistant request failed")
		return "", err
	}
	s.logger.Debug().Str("task", p.Task).Dur("elapsed", s.now().Sub(start)).Msg("assistant responded")
	return out, nil
}

func (s *Service) GenerateText(ctx context.Context, req GenerateRequest) (*Generated, error) {
	text, err := s.respond(ctx, Prompt{Task: TaskGenerate, Text: req.Prompt})
	if err != nil {
		return nil, err
	}
	return &Generated{
		GeneratedText: text,
		Prompt:        req.Prompt,
		Model:         s.responder.Model(),
		Timestamp:     s.now().UTC(),
	}, nil
}

// AnalyzeCriteria counts the criteria and attaches fixed recommendations.
func (s *Service) AnalyzeCriteria(ctx context.Context, req AnalyzeRequest) (*CriteriaAnalysis, error) {
	c := req.Criteria
	if c == nil {
		c = &CriteriaInput{}
	}
	narrative, err := s.respond(ctx, Prompt{Task: TaskAnalyze, Text: criteriaText(c)})
	if err != nil {
		return nil, err
	}
	return &CriteriaAnalysis{
		AnalysisResults: AnalysisResults{
			InclusionCriteria: CriteriaReview{
				Count:      len(c.Inclusion),
				Complexity: "moderate",
				Recommendations: []string{
					"Consider broadening age range to increase enrollment",
					"Clarify medical history requirements",
				},
			},
			ExclusionCriteria: CriteriaReview{
				Count:      len(c.Exclusion),
				Complexity: "high",
				Recommendations: []string{
					"Some exclusion criteria may be too restrictive",
					"Consider patient safety vs. enrollment goals",
				},
			},
			EstimatedEnrollment: EnrollmentEstimate{Minimum: 150, Maximum: 300, Confidence: 0.75},
		},
		Suggestions: []string{
			"Optimize criteria to balance safety and enrollment",
			"Consider patient stratification strategies",
		},
		Narrative: narrative,
	}, nil
}

func criteriaText(c *CriteriaInput) string {
	var b strings.Builder
	b.WriteString("Inclusion:\n")
	for _, v := range c.Inclusion {
		fmt.Fprintf(&b, "- %s\n", v)
	}
	b.WriteString("Exclusion:\n")
	for _, v := range c.Exclusion {
		fmt.Fprintf(&b, "- %s\n", v)
	}
	return b.String()
}

func (s *Service) SuggestOptimizations(ctx context.Context, req OptimizeRequest) (*Optimizations, error) {
	narrative, err := s.respond(ctx, Prompt{Task: TaskOptimize, Text: fmt.Sprintf("Study %s, current criteria: %v", req.StudyID, req.CurrentCriteria)})
	if err != nil {
		return nil, err
	}
	return &Optimizations{
		StudyID: req.StudyID,
		Optimizations: []Optimization{
			{
				Type:       "criteria_adjustment",
				Priority:   "high",
				Suggestion: "Expand age range from 18-65 to 18-75",
				Impact:     "Could increase eligible population by 25%",
				Confidence: 0.8,
			},
			{
				Type:       "site_selection",
				Priority:   "medium",
				Suggestion: "Add urban research centers",
				Impact:     "Improved geographic diversity",
				Confidence: 0.7,
			},
			{
				Type:       "recruitment_strategy",
				Priority:   "medium",
				Suggestion: "Implement digital recruitment channels",
				Impact:     "Faster enrollment timeline",
				Confidence: 0.6,
			},
		},
		Timeline: Timeline{
			CurrentProjection:   "12 months",
			OptimizedProjection: "9 months",
			Improvement:         "25%",
		},
		Narrative: narrative,
	}, nil
}

func (s *Service) ProcessDocument(ctx context.Context, req DocumentRequest) (*DocumentAnalysis, error) {
	summary, err := s.respond(ctx, Prompt{Task: TaskSummarize, Text: req.DocumentText, Topic: req.AnalysisType})
	if err != nil {
		return nil, err
	}
	return &DocumentAnalysis{
		AnalysisType:   req.AnalysisType,
		DocumentLength: utf8.RuneCountInString(req.DocumentText),
		KeyInsights: []string{
			"Document contains clinical trial protocol information",
			"Identified potential safety concerns",
			"Found regulatory compliance requirements",
		},
		ExtractedEntities: []Entity{
			{Type: "medication", Value: "Example Drug A", Confidence: 0.9},
			{Type: "condition", Value: "Hypertension", Confidence: 0.85},
			{Type: "age_range", Value: "18-65 years", Confidence: 0.8},
		},
		Sentiment: Sentiment{Overall: "neutral", Confidence: 0.7},
		Summary:   summary,
	}, nil
}

func (s *Service) Chat(ctx context.Context, req ChatRequest) (*ChatReply, error) {
	msg, err := s.respond(ctx, Prompt{Task: TaskChat, Text: chatTranscript(req)})
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	chatCtx := req.Context
	if chatCtx == nil {
		chatCtx = map[string]any{}
	}
	return &ChatReply{
		Message:   msg,
		MessageID: fmt.Sprintf("msg-%d", now.UnixMilli()),
		Timestamp: now,
		Context:   chatCtx,
		Suggestions: []string{
			"Would you like me to analyze the current enrollment data?",
			"I can help optimize your study criteria if needed.",
			"Would you like to see patient matching recommendations?",
		},
	}, nil
}

// chatTranscript renders prior turns followed by the new message. Turns
// without a string content field are skipped.
func chatTranscript(req ChatRequest) string {
	if len(req.ConversationHistory) == 0 {
		return req.Message
	}
	var b strings.Builder
	for _, turn := range req.ConversationHistory {
		content, _ := turn["content"].(string)
		if content == "" {
			continue
		}
		role, _ := turn["role"].(string)
		if role == "" {
			role = "user"
		}
		fmt.Fprintf(&b, "%s: %s\n", role, content)
	}
	fmt.Fprintf(&b, "user: %s", req.Message)
	return b.String()
}
