package observe

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"endfind/estimator"
)

func TestParseCommand(t *testing.T) {
	obs, err := ParseCommand("/execute in minecraft:overworld run tp @s 12.50 64.00 -30.25 -179.9 -31.2")
	require.NoError(t, err)
	want := estimator.Observation{X: 12.5, Y: 64, Z: -30.25, Yaw: -179.9, Pitch: -31.2}
	if diff := cmp.Diff(want, obs); diff != "" {
		t.Fatalf("ParseCommand mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCommandNormalizesYaw(t *testing.T) {
	obs, err := ParseCommand("/tp @s 0 70 0 270 0")
	require.NoError(t, err)
	assert.Equal(t, -90.0, obs.Yaw)

	obs, err = ParseCommand("/tp @s 0 70 0 -540 0")
	require.NoError(t, err)
	assert.Equal(t, -180.0, obs.Yaw)
}

func TestParseCommandErrors(t *testing.T) {
	_, err := ParseCommand("tp @s 1 2 3 4 5")
	assert.ErrorIs(t, err, ErrNotCommand)

	_, err = ParseCommand("/tp @s 1 2 3 4")
	assert.ErrorIs(t, err, ErrFieldCount)

	_, err = ParseCommand("/tp @s 1 2 3 4 5 6")
	assert.ErrorIs(t, err, ErrFieldCount)
}

func TestParseCommandKeepsNonASCIINumerals(t *testing.T) {
	// "1²" stays one token and fails to parse, leaving four numbers.
	_, err := ParseCommand("/tp @s 1² 64 0 90 0")
	assert.ErrorIs(t, err, ErrFieldCount)

	obs, err := ParseCommand("/tp @s 1 64 0 90 0 ²")
	require.NoError(t, err)
	assert.Equal(t, 90.0, obs.Yaw)
}

func TestNormalizeYaw(t *testing.T) {
	cases := map[float64]float64{
		0:    0,
		180:  180,
		-180: -180,
		181:  -179,
		-181: 179,
		720:  0,
		350:  -10,
		-350: 10,
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeYaw(in), "yaw %v", in)
	}
}

func TestReadAllDeduplicates(t *testing.T) {
	input := `# two throws, one repeated
/execute in minecraft:overworld run tp @s 100.5 64 200.5 -45.0 -30.0

/execute in minecraft:overworld run tp @s 100.5 64 200.5 -45.0 -30.0
/execute in minecraft:overworld run tp @s -300 70 50 30.5 -31
`
	obs, err := ReadAll(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, obs, 2)
	assert.Equal(t, 100.5, obs[0].X)
	assert.Equal(t, -300.0, obs[1].X)
}

func TestReadAllReportsLine(t *testing.T) {
	_, err := ReadAll(strings.NewReader("/tp @s 1 2 3 4 5\nnot a command\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
	assert.ErrorIs(t, err, ErrNotCommand)
}
