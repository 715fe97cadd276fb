package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/venue-platform/pkg/logging"
)

type stubClient struct {
	resp  Response
	err   error
	calls int
	delay time.Duration
}

func (s *stubClient) Complete(ctx context.Context, req Request) (Response, error) {
	s.calls++
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return Response{}, ctx.Err()
		case <-time.After(s.delay):
		}
	}
	return s.resp, s.err
}

type stubConverse struct {
	input *bedrockruntime.ConverseInput
	out   *bedrockruntime.ConverseOutput
	err   error
}

func (s *stubConverse) Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	s.input = params
	return s.out, s.err
}

func TestFallbackClientUsesPrimaryWhenHealthy(t *testing.T) {
	primary := &stubClient{resp: Response{Text: "primary"}}
	fallback := &stubClient{resp: Response{Text: "fallback"}}
	client := NewFallbackClient(primary, fallback, logging.Discard())

	resp, err := client.Complete(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "primary", resp.Text)
	assert.Equal(t, 0, fallback.calls)
}

func TestFallbackClientTriesSecondary(t *testing.T) {
	primary := &stubClient{err: errors.New("throttled")}
	fallback := &stubClient{resp: Response{Text: "fallback"}}
	client := NewFallbackClient(primary, fallback, logging.Discard())

	resp, err := client.Complete(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "fallback", resp.Text)
}

func TestFallbackClientWithoutSecondaryReturnsPrimaryError(t *testing.T) {
	primaryErr := errors.New("down")
	client := NewFallbackClient(&stubClient{err: primaryErr}, nil, logging.Discard())

	_, err := client.Complete(context.Background(), Request{})
	assert.ErrorIs(t, err, primaryErr)
}

func TestTimeoutClientCutsSlowProvider(t *testing.T) {
	slow := &stubClient{resp: Response{Text: "late"}, delay: time.Second}
	client := WithTimeout(slow, 20*time.Millisecond)

	start := time.Now()
	_, err := client.Complete(context.Background(), Request{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestWithTimeoutDisabled(t *testing.T) {
	inner := &stubClient{}
	assert.Same(t, Client(inner), WithTimeout(inner, 0))
}

func TestBedrockClientComplete(t *testing.T) {
	api := &stubConverse{out: &bedrockruntime.ConverseOutput{
		Output: &brtypes.ConverseOutputMemberMessage{Value: brtypes.Message{
			Role:    brtypes.ConversationRoleAssistant,
			Content: []brtypes.ContentBlock{&brtypes.ContentBlockMemberText{Value: ` {"party_size":4} `}},
		}},
		StopReason: brtypes.StopReasonEndTurn,
		Usage:      &brtypes.TokenUsage{InputTokens: aws.Int32(10), OutputTokens: aws.Int32(5), TotalTokens: aws.Int32(15)},
	}}
	client := NewBedrockClient(api, "anthropic.test-model")

	resp, err := client.Complete(context.Background(), Request{
		System:    []string{"emit json"},
		Messages:  []Message{{Role: RoleUser, Content: "table for 4"}},
		MaxTokens: 200,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"party_size":4}`, resp.Text)
	assert.Equal(t, int32(15), resp.Usage.TotalTokens)
	assert.Equal(t, "anthropic.test-model", aws.ToString(api.input.ModelId))
	assert.Len(t, api.input.System, 1)
	require.NotNil(t, api.input.InferenceConfig)
	assert.Equal(t, int32(200), aws.ToInt32(api.input.InferenceConfig.MaxTokens))
}

func TestBedrockClientRequiresModel(t *testing.T) {
	client := NewBedrockClient(&stubConverse{}, "")
	_, err := client.Complete(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	assert.Error(t, err)
}

func TestBedrockClientRejectsEmptyOutput(t *testing.T) {
	api := &stubConverse{out: &bedrockruntime.ConverseOutput{
		Output: &brtypes.ConverseOutputMemberMessage{Value: brtypes.Message{}},
	}}
	client := NewBedrockClient(api, "model")
	_, err := client.Complete(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	assert.Error(t, err)
}
