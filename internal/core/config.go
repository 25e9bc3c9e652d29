package core

// RuntimeConfig contains configuration passed to games at initialization.
type RuntimeConfig struct {
	ScreenW  int    // Screen width in characters
	ScreenH  int    // Screen height in characters
	TickRate int    // Frames per second of the platform loop
	Lang     string // UI language tag, "en" or "zh"
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 30,
		Lang:     "en",
	}
}

// GameState represents the current state of a game.
// Returned by Game.State() to communicate status to the platform.
type GameState struct {
	Moves     int  // Accepted moves since the last reset
	Collected int  // Targets collected
	Targets   int  // Targets in the level
	Won       bool // Whether the level is cleared
	Paused    bool // Whether the game is paused
}

// StepResult is returned by Game.Step() after each frame.
type StepResult struct {
	State GameState
	// Cues lists the sound cues raised this frame ("move", "switch",
	// "collect", "win", "error").
	Cues []string
}

// Has reports whether cue was raised this frame.
func (r StepResult) Has(cue string) bool {
	for _, c := range r.Cues {
		if c == cue {
			return true
		}
	}
	return false
}
