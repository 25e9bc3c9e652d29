package levels

import (
	"embed"
	"fmt"
)

//go:embed campaign/*.yaml
var campaignFS embed.FS

// Campaign returns the built-in levels in play order.
func Campaign() ([]Level, error) {
	lvls, err := NewFSLoader(campaignFS, "campaign").LoadAll()
	if err != nil {
		return nil, fmt.Errorf("load campaign: %w", err)
	}
	return lvls, nil
}
