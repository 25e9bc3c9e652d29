package duality

import (
	"github.com/vovakirdan/tui-duality/internal/games/duality/core"
	"github.com/vovakirdan/tui-duality/internal/games/duality/levels"
	"github.com/vovakirdan/tui-duality/internal/registry"
)

func init() {
	campaign, err := levels.Campaign()
	if err != nil {
		panic(err)
	}
	for _, lvl := range campaign {
		data := lvl.Data
		registry.Register(registry.LevelInfo{
			ID:     lvl.ID,
			Title:  lvl.Title(),
			Order:  lvl.Order,
			Source: registry.SourceCampaign,
		}, func() *core.Level { return data.Clone() })
	}

	registry.RegisterGame(func(info registry.LevelInfo, level *core.Level) registry.Game {
		return New(info, level)
	})
}

// AddLevels registers levels loaded from disk or the database.
// Levels whose ID is already taken are replaced unless built in.
func AddLevels(src registry.Source, lvls []levels.Level) []error {
	var errs []error
	for _, lvl := range lvls {
		data := lvl.Data
		err := registry.Replace(registry.LevelInfo{
			ID:     lvl.ID,
			Title:  lvl.Title(),
			Order:  lvl.Order,
			Source: src,
		}, func() *core.Level { return data.Clone() })
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
