package export

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sena-ops/sentrius/internal/model"
)

const (
	DefaultSourceType = "sentrius:findings"
	DefaultSource     = "sentrius-backend"
)

// Payload is the body handed to a remote sink.
type Payload struct {
	Findings   []model.Finding `json:"findings"`
	SourceType string          `json:"sourcetype,omitempty"`
	Source     string          `json:"source,omitempty"`
}

// Sink accepts an export payload. Implementations report transport failures
// through the returned error and must not retry on their own.
type Sink interface {
	Send(ctx context.Context, p Payload) error
}

var ErrNoSink = errors.New("no export sink configured")

// NewPayload wraps findings with the default source metadata. A nil slice is
// encoded as an empty list.
func NewPayload(findings []model.Finding) Payload {
	if findings == nil {
		findings = []model.Finding{}
	}
	return Payload{
		Findings:   findings,
		SourceType: DefaultSourceType,
		Source:     DefaultSource,
	}
}

// Remote builds the payload for findings and hands it to sink once.
func Remote(ctx context.Context, sink Sink, findings []model.Finding) error {
	if sink == nil {
		return ErrNoSink
	}
	if err := sink.Send(ctx, NewPayload(findings)); err != nil {
		return fmt.Errorf("remote export of %d findings: %w", len(findings), err)
	}
	return nil
}
