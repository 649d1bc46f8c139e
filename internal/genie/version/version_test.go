package version_test

import (
	"testing"

	"github.com/cory-johannsen/genie/internal/genie/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestParse_KnownEditions(t *testing.T) {
	cases := []struct {
		input string
		want  version.Edition
	}{
		{"ROR", version.ROR},
		{"aoc", version.AOC},
		{" AoE2DE ", version.AoE2DE},
		{"swgb", version.SWGB},
		{"HDEdition", version.HDEdition},
	}
	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			v, err := version.Parse(tc.input, nil)
			require.NoError(t, err)
			assert.Equal(t, tc.want, v.Edition)
		})
	}
}

func TestParse_UnknownEdition(t *testing.T) {
	_, err := version.Parse("AOE4", nil)
	require.Error(t, err)
}

func TestParse_ExpansionMustMatchEdition(t *testing.T) {
	v, err := version.Parse("SWGB", []string{"swgb_cc"})
	require.NoError(t, err)
	assert.True(t, v.Has(version.CloneCampaigns))

	_, err = version.Parse("AOC", []string{"SWGB_CC"})
	require.Error(t, err)

	_, err = version.Parse("SWGB", []string{"NOPE"})
	require.Error(t, err)
}

func TestPredicates(t *testing.T) {
	assert.True(t, version.New(version.ROR).IsAoE1())
	assert.True(t, version.New(version.AoE1DE).IsAoE1())
	assert.True(t, version.New(version.AoE1DE).IsDE())
	assert.False(t, version.New(version.AOC).IsDE())
	assert.True(t, version.New(version.SWGB).IsSWGB())
}

func TestString(t *testing.T) {
	v := version.New(version.HDEdition, version.RiseOfRajas, version.Forgotten)
	assert.Equal(t, "HDEDITION+HD_FORGOTTEN+HD_RISE_OF_RAJAS", v.String())
	assert.Equal(t, "AOC", version.New(version.AOC).String())
}

// TestString_ParseRoundTrip verifies that any HD edition version survives a
// render/parse cycle unchanged.
func TestString_ParseRoundTrip(t *testing.T) {
	all := []version.Expansion{version.Forgotten, version.AfricanKingdoms, version.RiseOfRajas}
	names := map[version.Expansion]string{
		version.Forgotten:       "HD_FORGOTTEN",
		version.AfricanKingdoms: "HD_AFRICAN_KINGDOMS",
		version.RiseOfRajas:     "HD_RISE_OF_RAJAS",
	}
	rapid.Check(t, func(rt *rapid.T) {
		picked := rapid.SliceOfDistinct(rapid.SampledFrom(all), func(x version.Expansion) version.Expansion { return x }).Draw(rt, "expansions")
		var raw []string
		for _, x := range picked {
			raw = append(raw, names[x])
		}
		v, err := version.Parse("HDEDITION", raw)
		require.NoError(rt, err)
		assert.Equal(rt, version.New(version.HDEdition, picked...), v)
	})
}
