package empires_test

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/klauspost/compress/flate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"

	"github.com/cory-johannsen/genie/internal/genie/reader"
	"github.com/cory-johannsen/genie/internal/genie/value"
	"github.com/cory-johannsen/genie/internal/genie/version"
	"github.com/cory-johannsen/genie/internal/importer"
	"github.com/cory-johannsen/genie/internal/importer/empires"
)

var aoc = version.New(version.AOC)

func put(b *bytes.Buffer, vs ...any) {
	for _, v := range vs {
		_ = binary.Write(b, binary.LittleEndian, v)
	}
}

// mediaAndBundles is an AoC media section with one player color followed by
// an effect bundle table holding "Loom".
func mediaAndBundles() (buf []byte, mediaLen int) {
	var b bytes.Buffer
	b.WriteString("VER 5.7\x00")
	put(&b, uint16(0), uint16(0))
	put(&b, uint16(1))
	for i := int32(0); i < 9; i++ {
		put(&b, i)
	}
	put(&b, uint16(0), uint16(0))
	mediaLen = b.Len()

	put(&b, uint32(1))
	name := make([]byte, 31)
	copy(name, "Loom")
	b.Write(name)
	put(&b, uint16(0))
	return b.Bytes(), mediaLen
}

func ids(sections []*importer.Section) []string {
	out := make([]string, 0, len(sections))
	for _, s := range sections {
		out = append(out, s.ID)
	}
	return out
}

func TestDecode_SplitsMediaSection(t *testing.T) {
	buf, mediaLen := mediaAndBundles()
	ds, err := empires.NewSource(aoc).Decode(buf)
	require.NoError(t, err)

	sum := blake2b.Sum256(buf)
	assert.Equal(t, hex.EncodeToString(sum[:]), ds.Digest)
	assert.NotEqual(t, uuid.Nil, ds.RunID)
	assert.Equal(t, len(buf), ds.Size)
	assert.Equal(t, mediaLen, ds.Consumed)
	assert.Equal(t, []string{"header", "terrain_restrictions", "player_colors", "sounds", "graphics"}, ids(ds.Sections))

	header := ds.Sections[0].Tree.(*value.Container)
	assert.Equal(t, 1, header.Len())
	versionstr, ok := header.Get("versionstr")
	require.True(t, ok)
	assert.Equal(t, "VER 5.7", versionstr.(*value.String).Value)
}

func TestDecode_ExtraBlocks(t *testing.T) {
	buf, mediaLen := mediaAndBundles()
	ds, err := empires.NewSource(aoc, empires.WithBlocks([]string{"effect_bundles"})).Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, len(buf), ds.Consumed)

	last := ds.Sections[len(ds.Sections)-1]
	assert.Equal(t, "effect_bundles", last.ID)
	native, err := value.ToNative(last.Tree)
	require.NoError(t, err)
	bundles := native.(map[string]any)["effect_bundles"].([]any)
	require.Len(t, bundles, 1)
	assert.Equal(t, "Loom", bundles[0].(map[string]any)["name"])

	// The same block addressed by absolute offset.
	at, err := empires.NewSource(aoc, empires.WithBlocks([]string{"effect_bundles@" + hexOffset(mediaLen)})).Decode(buf)
	require.NoError(t, err)
	assert.True(t, value.Equal(last.Tree, at.Sections[len(at.Sections)-1].Tree))
}

func hexOffset(n int) string {
	return "0x" + hex.EncodeToString([]byte{byte(n >> 8), byte(n)})
}

func TestDecode_BlockErrors(t *testing.T) {
	buf, _ := mediaAndBundles()

	_, err := empires.NewSource(aoc, empires.WithBlocks([]string{"terrains"})).Decode(buf)
	assert.ErrorIs(t, err, empires.ErrUnknownBlock)

	_, err = empires.NewSource(aoc, empires.WithBlocks([]string{"civs@nowhere"})).Decode(buf)
	assert.Error(t, err)

	_, err = empires.NewSource(aoc, empires.WithBlocks([]string{"civs@100000"})).Decode(buf)
	assert.ErrorIs(t, err, reader.ErrInvalidLength)
}

func TestDecode_Truncated(t *testing.T) {
	buf, _ := mediaAndBundles()
	_, err := empires.NewSource(aoc).Decode(buf[:20])
	assert.ErrorIs(t, err, reader.ErrIncompleteBuffer)
}

func TestLoad_Compressed(t *testing.T) {
	buf, _ := mediaAndBundles()
	var packed bytes.Buffer
	w, err := flate.NewWriter(&packed, flate.DefaultCompression)
	require.NoError(t, err)
	_, err = w.Write(buf)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	path := filepath.Join(t.TempDir(), "empires2_x1_p1.dat")
	require.NoError(t, os.WriteFile(path, packed.Bytes(), 0644))

	ds, err := empires.NewSource(aoc, empires.WithCompressed(true)).Load(path)
	require.NoError(t, err)
	assert.Equal(t, len(buf), ds.Size)
	assert.Equal(t, "header", ds.Sections[0].ID)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := empires.NewSource(aoc).Load(filepath.Join(t.TempDir(), "missing.dat"))
	assert.Error(t, err)
}

func TestImporterRun_WritesEverySection(t *testing.T) {
	buf, _ := mediaAndBundles()
	path := filepath.Join(t.TempDir(), "empires.dat")
	require.NoError(t, os.WriteFile(path, buf, 0644))

	outDir := t.TempDir()
	src := empires.NewSource(aoc, empires.WithLazy(true), empires.WithBlocks([]string{"effect_bundles"}))
	ds, err := importer.New(src, nil).Run(path, outDir)
	require.NoError(t, err)

	for _, s := range ds.Sections {
		_, err := os.Stat(filepath.Join(outDir, s.ID+".yaml"))
		assert.NoError(t, err, s.ID)
	}
	header, err := os.ReadFile(filepath.Join(outDir, "header.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "versionstr: VER 5.7\n", string(header))
}
