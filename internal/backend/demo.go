package backend

import (
	"context"
	_ "embed"

	"github.com/Sena-ops/sentrius/internal/adapters"
	"github.com/Sena-ops/sentrius/internal/model"
)

//go:embed demo.yaml
var demoData []byte

// Demo serves the fixed demonstration dataset without touching the network.
// The request is ignored.
type Demo struct{}

func (Demo) Fetch(ctx context.Context, _ Request) ([]model.Finding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return DemoFindings(), nil
}

// DemoFindings returns a fresh copy of the built-in dataset.
func DemoFindings() []model.Finding {
	findings, err := adapters.ParseFindingsBytes(demoData)
	if err != nil {
		panic("embedded demo dataset is invalid: " + err.Error())
	}
	return findings
}
