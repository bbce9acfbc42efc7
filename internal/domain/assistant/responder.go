// Package assistant serves the AI helper endpoints. Free text comes from a
// Responder; the structured parts of each answer are computed locally.
package assistant

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"
)

// Tasks a Responder is asked to perform.
const (
	TaskGenerate  = "generate"
	TaskAnalyze   = "analyze"
	TaskOptimize  = "optimize"
	TaskSummarize = "summarize"
	TaskChat      = "chat"
)

// Prompt is a single request to a Responder. Topic carries the secondary
// input of a task, such as the analysis type of a document.
type Prompt struct {
	Task  string
	Text  string
	Topic string
}

// Responder produces free text for a prompt. Implementations must return
// promptly once ctx is done.
type Responder interface {
	Respond(ctx context.Context, p Prompt) (string, error)
	Model() string
}

// CannedModel is the model name reported by the canned responder.
const CannedModel = "mock-gpt-4"

var generateTemplates = []string{
	`Based on the prompt "%s", here is a generated response that takes into account the provided context. This is a mock implementation that would normally connect to an AI service like OpenAI GPT or similar.`,
	`Generated content for: "%s". In a real implementation, this would utilize advanced natural language processing to provide contextually relevant responses.`,
	`AI-generated text responding to: "%s". This mock service simulates the behavior of large language models for research study management tasks.`,
}

var chatReplies = []string{
	"I understand your question about clinical research. Based on the current study context, here are some relevant insights...",
	"That's an interesting point about patient enrollment. Let me provide some data-driven recommendations...",
	"Regarding your inquiry about study protocols, I can help you analyze the current parameters and suggest optimizations...",
	"Based on the conversation history and study data, I recommend considering the following approach...",
}

const summaryTemplate = "This document appears to be a clinical research protocol focusing on %s. Key findings have been extracted and analyzed for research planning purposes."

// Canned answers from fixed templates after an optional delay. The template
// is picked from a hash of the prompt, so equal prompts get equal answers.
type Canned struct {
	delay time.Duration
}

func NewCanned(delay time.Duration) *Canned {
	return &Canned{delay: delay}
}

func (c *Canned) Model() string { return CannedModel }

func (c *Canned) Respond(ctx context.Context, p Prompt) (string, error) {
	if err := wait(ctx, c.delay); err != nil {
		return "", err
	}
	switch p.Task {
	case TaskGenerate:
		return fmt.Sprintf(pick(generateTemplates, p.Text), p.Text), nil
	case TaskChat:
		return pick(chatReplies, p.Text), nil
	case TaskSummarize:
		return fmt.Sprintf(summaryTemplate, p.Topic), nil
	case TaskAnalyze, TaskOptimize:
		return "", nil
	default:
		return "", fmt.Errorf("unknown task %q", p.Task)
	}
}

func pick(options []string, key string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return options[h.Sum32()%uint32(len(options))]
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
