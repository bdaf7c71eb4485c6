package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/southerncoder/my-Trading-Agents-sub007/config"
	"github.com/southerncoder/my-Trading-Agents-sub007/internal/resilience"
)

// fakeModel replays a scripted sequence of replies and errors.
type fakeModel struct {
	replies []string
	errs    []error
	calls   int
}

func (f *fakeModel) Generate(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	reply := ""
	if i < len(f.replies) {
		reply = f.replies[i]
	}
	return schema.AssistantMessage(reply, nil), nil
}

func (f *fakeModel) Stream(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

func fastPolicy() resilience.Policy {
	return resilience.Policy{
		MaxRetries: 2,
		BaseDelay:  time.Millisecond,
		MaxDelay:   time.Millisecond,
		Multiplier: 1.0,
	}
}

func TestGenerateReturnsTrimmedContent(t *testing.T) {
	inv := NewInvoker(&fakeModel{replies: []string{"  BUY with conviction  \n"}}, resilience.NewRunner(nil), nil, "quick")
	inv.policy = fastPolicy()

	got, err := inv.Generate(context.Background(), []*schema.Message{schema.UserMessage("analyze")})

	require.NoError(t, err)
	assert.Equal(t, "BUY with conviction", got)
}

func TestGenerateRetriesTransientErrors(t *testing.T) {
	fake := &fakeModel{
		errs:    []error{errors.New("429 too many requests"), nil},
		replies: []string{"", "HOLD for now"},
	}
	inv := NewInvoker(fake, resilience.NewRunner(nil), nil, "quick")
	inv.policy = fastPolicy()

	got, err := inv.Generate(context.Background(), []*schema.Message{schema.UserMessage("analyze")})

	require.NoError(t, err)
	assert.Equal(t, "HOLD for now", got)
	assert.Equal(t, 2, fake.calls)
}

func TestGenerateRejectsEmptyCompletions(t *testing.T) {
	fake := &fakeModel{replies: []string{"", "   ", "\n"}}
	inv := NewInvoker(fake, resilience.NewRunner(nil), nil, "quick")
	inv.policy = fastPolicy()

	_, err := inv.Generate(context.Background(), []*schema.Message{schema.UserMessage("analyze")})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty content")
	assert.Equal(t, 3, fake.calls, "one attempt plus two retries")
}

func TestNewModelsRequiresCredentials(t *testing.T) {
	ctx := context.Background()

	_, err := NewModels(ctx, &config.Config{LLMProvider: "deepseek"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deepseek API key")

	_, err = NewModels(ctx, &config.Config{LLMProvider: "openai"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai API key")

	_, err = NewModels(ctx, &config.Config{LLMProvider: "llama-at-home"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown LLM provider")
}
