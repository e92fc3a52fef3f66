package adapters

import (
	"strings"

	"github.com/google/uuid"
)

func safeLine(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func newID() string {
	return uuid.NewString()
}
