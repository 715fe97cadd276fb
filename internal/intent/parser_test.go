package intent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticStrategy(name string, in Intent, ok bool, calls *[]string) Strategy {
	return StrategyFunc{
		Label: name,
		Fn: func(context.Context, string) (Intent, bool) {
			*calls = append(*calls, name)
			return in, ok
		},
	}
}

func TestParserFirstSuccessWins(t *testing.T) {
	var calls []string
	p := NewParser(
		staticStrategy("first", Intent{}, false, &calls),
		nil,
		staticStrategy("second", Intent{PartySize: 3}, true, &calls),
		staticStrategy("third", Intent{PartySize: 9}, true, &calls),
	)

	in, name, err := p.Parse(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, "second", name)
	assert.Equal(t, 3, in.PartySize)
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestParserExhausted(t *testing.T) {
	var calls []string
	p := NewParser(staticStrategy("only", Intent{}, false, &calls))
	_, name, err := p.Parse(context.Background(), "hey can I come by sometime")
	assert.True(t, errors.Is(err, ErrNotUnderstood))
	assert.Empty(t, name)

	_, _, err = NewParser().Parse(context.Background(), "reservation tomorrow")
	assert.ErrorIs(t, err, ErrNotUnderstood)
}

func TestParserFallsBackToPatternWhenModelFails(t *testing.T) {
	ai := newTestAI(&stubLLM{err: context.DeadlineExceeded})
	p := NewParser(ai, NewPatternStrategy(testOptions()))

	in, name, err := p.Parse(context.Background(), "reservation for 4 guests tomorrow at 7pm")
	require.NoError(t, err)
	assert.Equal(t, "pattern", name)
	assert.Equal(t, 4, in.PartySize)

	_, _, err = p.Parse(context.Background(), "hey can I come by sometime")
	assert.ErrorIs(t, err, ErrNotUnderstood)
}
