package intent

import (
	"context"
	"errors"
)

// ErrNotUnderstood is returned when every strategy failed to produce an
// intent.
var ErrNotUnderstood = errors.New("intent: could not understand request")

// Strategy is one way of reading a message. ok=false means "try the next one".
type Strategy interface {
	Name() string
	Parse(ctx context.Context, text string) (Intent, bool)
}

// StrategyFunc adapts a plain function to Strategy.
type StrategyFunc struct {
	Label string
	Fn    func(ctx context.Context, text string) (Intent, bool)
}

func (s StrategyFunc) Name() string { return s.Label }

func (s StrategyFunc) Parse(ctx context.Context, text string) (Intent, bool) {
	return s.Fn(ctx, text)
}

// Parser tries its strategies in order; the first success wins.
type Parser struct {
	strategies []Strategy
}

// NewParser builds a parser from an ordered strategy list. Nil entries are
// skipped so optional strategies (no model configured) can be passed through.
func NewParser(strategies ...Strategy) *Parser {
	p := &Parser{}
	for _, s := range strategies {
		if s != nil {
			p.strategies = append(p.strategies, s)
		}
	}
	return p
}

// Parse returns the first intent produced and the name of the strategy that
// produced it.
func (p *Parser) Parse(ctx context.Context, text string) (Intent, string, error) {
	for _, s := range p.strategies {
		if in, ok := s.Parse(ctx, text); ok {
			return in, s.Name(), nil
		}
	}
	return Intent{}, "", ErrNotUnderstood
}
