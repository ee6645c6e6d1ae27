// Package fallback resolves payees that the structural extractor could not,
// by asking an external text-understanding model. It is optional: the
// pipeline runs identically with the noop resolver.
package fallback

import (
	"context"

	"github.com/shopspring/decimal"
)

// Request is one transaction whose payee extraction came back empty.
type Request struct {
	Action      string
	Description string
	Amount      decimal.Decimal
}

// Resolution is the model's answer for one request. Confidence is clamped
// to [0,1]; callers must apply their acceptance floor before using Payee.
type Resolution struct {
	Payee       string  `json:"payee"`
	Confidence  float64 `json:"confidence"`
	Explanation string  `json:"explanation"`
}

// Resolver answers a batch of payee requests. Implementations own their
// timeout policy; the pipeline core defines none.
type Resolver interface {
	ResolvePayees(ctx context.Context, reqs []Request) ([]Resolution, error)
}

// Noop is the default resolver: every payee stays unresolved.
type Noop struct{}

func (Noop) ResolvePayees(ctx context.Context, reqs []Request) ([]Resolution, error) {
	return make([]Resolution, len(reqs)), nil
}
