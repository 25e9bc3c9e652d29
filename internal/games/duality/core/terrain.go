package core

// EffectiveTerrain returns the terrain at (x, y) as seen by the rules.
//
// Outside the grid the answer is Void. Without a state the raw terrain is
// returned. Otherwise the inactive token overrides whatever lies beneath it:
// an inactive P1 reads as LightTile and an inactive P2 reads as DarkTile,
// including over Wall and Void. P1 is checked first.
func EffectiveTerrain(l *Level, s *State, x, y int) Terrain {
	p := P(x, y)
	if !l.InBounds(p) {
		return Void
	}
	if s == nil {
		return l.Terrain[y][x]
	}
	if s.Active != White && s.P1 == p {
		return White.Becomes()
	}
	if s.Active != Black && s.P2 == p {
		return Black.Becomes()
	}
	return l.Terrain[y][x]
}

// EffectiveAt is EffectiveTerrain addressed by position.
func EffectiveAt(l *Level, s *State, p Pos) Terrain {
	return EffectiveTerrain(l, s, p.X, p.Y)
}

// EffectiveGrid resolves every cell of the level at once, indexed [y][x].
// Renderers use it to draw a frame without repeating the overlay rules.
func EffectiveGrid(l *Level, s *State) [][]Terrain {
	g := make([][]Terrain, l.Height)
	for y := range g {
		g[y] = make([]Terrain, l.Width)
		for x := range g[y] {
			g[y][x] = EffectiveTerrain(l, s, x, y)
		}
	}
	return g
}

// IsWalkable reports whether token c could stand on p judging only by the
// resolved terrain. The engine additionally checks for the partner's body;
// both answers agree for every reachable state.
func IsWalkable(l *Level, s *State, c Character, p Pos) bool {
	return EffectiveAt(l, s, p) == c.Walks()
}
