package core

// Shorthands for the built-in level tables.
const (
	_v = Void
	_w = Wall
	_l = LightTile
	_d = DarkTile
)

// InitialLevel returns the 7x7 tutorial level.
func InitialLevel() *Level {
	return &Level{
		Width:  7,
		Height: 7,
		Terrain: [][]Terrain{
			{_w, _w, _w, _w, _w, _w, _w},
			{_w, _d, _d, _w, _w, _d, _w},
			{_w, _l, _d, _l, _l, _d, _w},
			{_w, _l, _d, _w, _l, _d, _w},
			{_w, _l, _d, _d, _l, _d, _w},
			{_w, _l, _w, _w, _l, _l, _w},
			{_w, _w, _w, _w, _w, _w, _w},
		},
		P1Start: P(1, 1),
		P2Start: P(5, 5),
		Targets: []Pos{P(1, 5), P(5, 1)},
	}
}

// LevelTwo returns the 9x7 second level: two shaded corridors around a
// void cross with a single target at its centre.
func LevelTwo() *Level {
	return &Level{
		Width:  9,
		Height: 7,
		Terrain: [][]Terrain{
			{_w, _w, _w, _w, _w, _w, _w, _w, _w},
			{_w, _d, _d, _v, _v, _v, _l, _l, _w},
			{_w, _d, _w, _w, _v, _w, _w, _l, _w},
			{_w, _d, _v, _v, _v, _v, _v, _l, _w},
			{_w, _d, _w, _w, _v, _w, _w, _l, _w},
			{_w, _d, _d, _v, _v, _v, _l, _l, _w},
			{_w, _w, _w, _w, _w, _w, _w, _w, _w},
		},
		P1Start: P(1, 1),
		P2Start: P(7, 1),
		Targets: []Pos{P(4, 3)},
	}
}
