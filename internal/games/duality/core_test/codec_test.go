package core_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-duality/internal/games/duality/core"
)

func TestLevelJSONRoundTrip(t *testing.T) {
	for _, l := range []*core.Level{core.InitialLevel(), core.LevelTwo()} {
		data, err := core.MarshalLevel(l)
		require.NoError(t, err)

		back, err := core.UnmarshalLevel(data)
		require.NoError(t, err)
		assert.True(t, l.Equal(back))
		assert.Equal(t, l, back)
	}
}

func TestLevelJSONShape(t *testing.T) {
	data, err := core.MarshalLevel(core.InitialLevel())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.EqualValues(t, 7, raw["width"])
	assert.EqualValues(t, 7, raw["height"])
	assert.Equal(t, map[string]any{"x": 1.0, "y": 1.0}, raw["p1Start"])
	assert.Len(t, raw["targets"], 2)

	rows := raw["terrain"].([]any)
	assert.Equal(t, []any{1.0, 3.0, 3.0, 1.0, 1.0, 3.0, 1.0}, rows[1])
}

func TestUnmarshalLevelRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
		code string
	}{
		{"not json", `{"width":`, core.CodeMalformed},
		{"missing width", `{"height":1,"terrain":[[3]],"p1Start":{"x":0,"y":0}}`, core.CodeMissingField},
		{"zero height", `{"width":1,"height":0,"terrain":[],"p1Start":{"x":0,"y":0}}`, core.CodeMissingField},
		{"missing terrain", `{"width":1,"height":1,"p1Start":{"x":0,"y":0}}`, core.CodeMissingField},
		{"missing p1Start", `{"width":1,"height":1,"terrain":[[3]]}`, core.CodeMissingField},
		{"short row", `{"width":2,"height":1,"terrain":[[3]],"p1Start":{"x":0,"y":0}}`, core.CodeBadTerrain},
		{"unknown terrain", `{"width":1,"height":1,"terrain":[[7]],"p1Start":{"x":0,"y":0}}`, core.CodeBadTerrain},
		{"start outside", `{"width":1,"height":1,"terrain":[[3]],"p1Start":{"x":2,"y":0}}`, core.CodeStartOutOfBounds},
		{
			"target outside",
			`{"width":1,"height":1,"terrain":[[3]],"p1Start":{"x":0,"y":0},"targets":[{"x":0,"y":5}]}`,
			core.CodeTargetOutOfBounds,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l, err := core.UnmarshalLevel([]byte(tc.data))
			assert.Nil(t, l)
			requireCode(t, err, tc.code)
		})
	}
}

func TestUnmarshalLevelDefaults(t *testing.T) {
	l, err := core.UnmarshalLevel([]byte(`{"width":2,"height":1,"terrain":[[3,2]],"p1Start":{"x":0,"y":0}}`))
	require.NoError(t, err)
	assert.Equal(t, core.P(0, 0), l.P2Start)
	assert.NotNil(t, l.Targets)
	assert.Empty(t, l.Targets)
}
