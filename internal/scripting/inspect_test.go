package scripting_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/genie/internal/genie/loader"
	"github.com/cory-johannsen/genie/internal/genie/version"
	"github.com/cory-johannsen/genie/internal/importer"
	"github.com/cory-johannsen/genie/internal/importer/empires"
	"github.com/cory-johannsen/genie/internal/scripting"
)

var aoc = version.New(version.AOC)

// soundsDat is an AoC media section holding one sound per id.
func soundsDat(ids ...int16) []byte {
	var b bytes.Buffer
	put := func(vs ...any) {
		for _, v := range vs {
			_ = binary.Write(&b, binary.LittleEndian, v)
		}
	}
	b.WriteString("VER 5.7\x00")
	put(uint16(0), uint16(0), uint16(0))
	put(uint16(len(ids)))
	for _, id := range ids {
		put(id, int16(0), uint16(1), int32(0))
		name := make([]byte, 13)
		copy(name, "snd.wav")
		b.Write(name)
		put(int32(5000+int32(id)), int16(100), int16(-1), int16(-1))
	}
	put(uint16(0))
	return b.Bytes()
}

func sections(t *testing.T, lazy bool, ids ...int16) []*importer.Section {
	t.Helper()
	ds, err := empires.NewSource(aoc, empires.WithLazy(lazy)).Decode(soundsDat(ids...))
	require.NoError(t, err)
	return ds.Sections
}

const listSounds = `
	emit(dat.header.versionstr)
	for i, s in ipairs(dat.sounds) do
		emit(i, s.sound_id, s.sound_items[1].resource_id)
	end
`

func TestInspect_EmitsLines(t *testing.T) {
	lines, err := scripting.Inspect(listSounds, sections(t, false, 3, 4), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"VER 5.7", "1\t3\t5003", "2\t4\t5004"}, lines)
}

func TestInspect_LazyMatchesEager(t *testing.T) {
	eager, err := scripting.Inspect(listSounds, sections(t, false, 7, 8, 9), 0)
	require.NoError(t, err)
	lazy, err := scripting.Inspect(listSounds, sections(t, true, 7, 8, 9), 0)
	require.NoError(t, err)
	assert.Equal(t, eager, lazy)
}

func TestInspector_LoadsThroughCache(t *testing.T) {
	cache, err := loader.NewCache(2, nil, zap.NewNop())
	require.NoError(t, err)
	in := scripting.NewInspector(cache, nil)

	lines, err := in.Inspect(`emit(dat.sounds[2].sound_id)`, sections(t, true, 1, 2, 3), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, lines)
	assert.Equal(t, 1, cache.Len())

	_, err = in.Inspect(listSounds, sections(t, true, 1, 2, 3), 0)
	require.NoError(t, err)
	assert.Equal(t, 2, cache.Len())
}

func TestInspect_LogWritesToLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	in := scripting.NewInspector(nil, zap.New(core))
	_, err := in.Inspect(`log("sounds: " .. #dat.sounds)`, sections(t, false, 1), 0)
	require.NoError(t, err)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "sounds: 1", logs.All()[0].ContextMap()["msg"])
}

func TestInspect_ScriptErrorKeepsEmittedLines(t *testing.T) {
	lines, err := scripting.Inspect(`emit("before") error("boom")`, sections(t, false, 1), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, []string{"before"}, lines)
}

func TestInspect_InstructionLimit(t *testing.T) {
	_, err := scripting.Inspect(`while true do end`, nil, 100)
	assert.Error(t, err)
}

func TestInspect_SandboxHasNoOS(t *testing.T) {
	_, err := scripting.Inspect(`os.exit(1)`, nil, 0)
	assert.Error(t, err)
}
