// Package backend retrieves findings collections from a scan source: the
// remote scan service in live mode, or a built-in dataset in demo mode.
package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/Sena-ops/sentrius/internal/model"
)

// Request identifies what to scan. Either RepoURL or LocalPath is set.
type Request struct {
	RepoURL   string `json:"repo_url,omitempty"`
	Branch    string `json:"branch,omitempty"`
	LocalPath string `json:"local_path,omitempty"`
	Token     string `json:"private_token,omitempty"`
}

// Backend returns the findings for one scan request. Failures are reported as
// *model.TransportError.
type Backend interface {
	Fetch(ctx context.Context, req Request) ([]model.Finding, error)
}

// Mode selects the data source.
type Mode string

const (
	ModeDemo Mode = "demo"
	ModeLive Mode = "live"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeDemo, "offline", "mock":
		return ModeDemo, nil
	case ModeLive:
		return ModeLive, nil
	}
	return "", fmt.Errorf("unknown data source mode %q (want demo or live)", s)
}
