package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"google.golang.org/genai"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestCanned_Deterministic(t *testing.T) {
	r := NewCanned(0)
	ctx := context.Background()
	p := Prompt{Task: TaskGenerate, Text: "Draft a consent form summary"}

	a, err := r.Respond(ctx, p)
	require.NoError(t, err)
	b, err := r.Respond(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Contains(t, a, `"Draft a consent form summary"`)
	assert.Equal(t, CannedModel, r.Model())
}

func TestCanned_Tasks(t *testing.T) {
	r := NewCanned(0)
	ctx := context.Background()

	chat, err := r.Respond(ctx, Prompt{Task: TaskChat, Text: "hello"})
	require.NoError(t, err)
	assert.Contains(t, chatReplies, chat)

	summary, err := r.Respond(ctx, Prompt{Task: TaskSummarize, Text: "doc", Topic: "safety"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(summary, "This document appears to be a clinical research protocol focusing on safety."))

	empty, err := r.Respond(ctx, Prompt{Task: TaskAnalyze})
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = r.Respond(ctx, Prompt{Task: "translate"})
	assert.Error(t, err)
}

func TestCanned_DelayHonorsContext(t *testing.T) {
	r := NewCanned(time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := r.Respond(ctx, Prompt{Task: TaskChat, Text: "hi"})
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, time.Since(start), time.Second)
}

func TestCanned_Delay(t *testing.T) {
	r := NewCanned(20 * time.Millisecond)
	start := time.Now()
	_, err := r.Respond(context.Background(), Prompt{Task: TaskChat, Text: "hi"})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

type fakeModels struct {
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
	reply    string
	err      error
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model, f.contents, f.config = model, contents, config
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: genai.NewContentFromText(f.reply, genai.RoleModel)}},
	}, nil
}

func TestGemini_Respond(t *testing.T) {
	fake := &fakeModels{reply: "  Consider widening the age range.  "}
	g := &Gemini{models: fake, model: "gemini-test"}

	out, err := g.Respond(context.Background(), Prompt{Task: TaskSummarize, Text: "protocol body", Topic: "efficacy"})
	require.NoError(t, err)
	assert.Equal(t, "Consider widening the age range.", out)
	assert.Equal(t, "gemini-test", fake.model)
	require.Len(t, fake.contents, 1)
	require.NotEmpty(t, fake.contents[0].Parts)
	assert.Contains(t, fake.contents[0].Parts[0].Text, "Analysis type: efficacy")
	require.NotNil(t, fake.config.SystemInstruction)
	assert.Equal(t, "gemini-test", g.Model())
}

func TestGemini_Errors(t *testing.T) {
	g := &Gemini{models: &fakeModels{err: errors.New("quota")}, model: "m"}
	_, err := g.Respond(context.Background(), Prompt{Task: TaskChat, Text: "hi"})
	assert.ErrorContains(t, err, "quota")

	g = &Gemini{models: &fakeModels{reply: ""}, model: "m"}
	_, err = g.Respond(context.Background(), Prompt{Task: TaskChat, Text: "hi"})
	assert.Error(t, err)

	_, err = g.Respond(context.Background(), Prompt{Task: "unknown"})
	assert.Error(t, err)

	_, err = NewGemini(context.Background(), "", "")
	assert.Error(t, err)
}
