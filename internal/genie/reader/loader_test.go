package reader_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/genie/internal/genie/reader"
	"github.com/cory-johannsen/genie/internal/genie/schema"
	"github.com/cory-johannsen/genie/internal/genie/value"
	"github.com/cory-johannsen/genie/internal/genie/version"
)

func scaledTable() *schema.Schema {
	sprite := schema.NewLazy("sprite", func(version.GameVersion) []schema.Entry {
		return []schema.Entry{
			field(schema.ReadGen, "id", schema.ID, schema.Raw("int16_t")),
			field(schema.ReadGen, "scale", schema.ArrayInt, schema.Raw("int8_t[scale_len]")),
		}
	})
	return fixed("table",
		field(schema.Read, "scale_len", schema.None, schema.Raw("uint8_t")),
		field(schema.ReadGen, "sprites", schema.ArrayContainer, &schema.Subdata{
			Schema:     sprite,
			Length:     schema.Fixed(2),
			PassedArgs: []string{"scale_len"},
		}),
	)
}

func spriteSchema() *schema.Schema {
	return schema.NewLazy("sprite", func(version.GameVersion) []schema.Entry {
		return []schema.Entry{
			field(schema.ReadGen, "id", schema.ID, schema.Raw("int16_t")),
			field(schema.Read, "frames", schema.None, schema.Raw("uint8_t")),
			field(schema.ReadGen, "delays", schema.ArrayInt, schema.Raw("uint8_t[frames]")),
		}
	})
}

func spriteTable(sprite *schema.Schema) *schema.Schema {
	return fixed("table",
		field(schema.Read, "count", schema.None, schema.Raw("uint8_t")),
		field(schema.ReadGen, "sprites", schema.ArrayContainer, &schema.Subdata{Schema: sprite, Length: schema.FieldLength("count")}),
		field(schema.ReadGen, "trailer", schema.Int, schema.Raw("uint8_t")),
	)
}

var spriteBuf = cat(
	[]byte{2},
	le16(11), []byte{2, 5, 6},
	le16(12), []byte{1, 9},
	[]byte{0x7f},
)

func TestLazy_DefersRecordsButAdvancesCursor(t *testing.T) {
	sch := spriteTable(spriteSchema())
	res, err := reader.New(reader.WithLazy(true)).Read(spriteBuf, 0, sch, aoc, reader.Export)
	require.NoError(t, err)
	assert.Equal(t, len(spriteBuf), res.Consumed)
	assert.Equal(t, int64(0x7f), mustGet(t, res.Tree, "trailer").(*value.Int).Value)

	arr := mustGet(t, res.Tree, "sprites").(*value.Array)
	require.Equal(t, 2, arr.Len())
	l, ok := arr.Members()[1].(*reader.DynamicLoader)
	require.True(t, ok)
	assert.Equal(t, value.KindDeferred, l.Kind())
	assert.Equal(t, "1", l.Name())
	assert.Equal(t, 6, l.Offset())
	assert.Equal(t, 4, l.Len())
	assert.False(t, l.Loaded())

	slots, err := res.Record.Slots("sprites")
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Nil(t, slots[0].Record)
	assert.NotNil(t, slots[0].Loader)
}

func TestLazy_LoadIsIdempotent(t *testing.T) {
	sch := spriteTable(spriteSchema())
	res, err := reader.New(reader.WithLazy(true)).Read(spriteBuf, 0, sch, aoc, reader.Export)
	require.NoError(t, err)
	l := mustGet(t, res.Tree, "sprites").(*value.Array).Members()[0].(*reader.DynamicLoader)

	require.NoError(t, l.Load())
	first, ok := l.Tree()
	require.True(t, ok)
	require.NoError(t, l.Load())
	second, ok := l.Tree()
	require.True(t, ok)
	assert.Same(t, first, second)

	got, err := value.ToNative(first)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": int64(11), "delays": []any{int64(5), int64(6)}}, got)

	rec, ok := l.Record()
	require.True(t, ok)
	frames, err := rec.Int("frames")
	require.NoError(t, err)
	assert.Equal(t, int64(2), frames)

	l.Unload()
	assert.False(t, l.Loaded())
	_, ok = l.Tree()
	assert.False(t, ok)

	again, err := l.Materialize()
	require.NoError(t, err)
	assert.True(t, value.Equal(first, again))
	assert.False(t, l.Loaded())
}

func TestLazy_MemberLoadsTransiently(t *testing.T) {
	sch := spriteTable(spriteSchema())
	res, err := reader.New(reader.WithLazy(true)).Read(spriteBuf, 0, sch, aoc, reader.Export)
	require.NoError(t, err)
	l := mustGet(t, res.Tree, "sprites").(*value.Array).Members()[1].(*reader.DynamicLoader)

	m, err := l.Member("id")
	require.NoError(t, err)
	assert.Equal(t, int64(12), m.(*value.ID).Value)
	assert.False(t, l.Loaded())

	_, err = l.Member("nope")
	assert.ErrorIs(t, err, reader.ErrUnknownField)
}

func TestLazy_MatchesEagerRead(t *testing.T) {
	sch := spriteTable(spriteSchema())
	eager, err := reader.New().Read(spriteBuf, 0, sch, aoc, reader.Export)
	require.NoError(t, err)
	lazy, err := reader.New(reader.WithLazy(true)).Read(spriteBuf, 0, sch, aoc, reader.Export)
	require.NoError(t, err)
	assert.True(t, value.Equal(eager.Tree, lazy.Tree))
}

func TestLazy_PassedArgsSurviveDeferral(t *testing.T) {
	buf := cat([]byte{2}, le16(11), []byte{1, 2}, le16(12), []byte{3, 4})
	res, err := reader.New(reader.WithLazy(true)).Read(buf, 0, scaledTable(), aoc, reader.Export)
	require.NoError(t, err)
	assert.Equal(t, len(buf), res.Consumed)

	l := mustGet(t, res.Tree, "sprites").(*value.Array).Members()[1].(*reader.DynamicLoader)
	require.NoError(t, l.Load())
	tree, _ := l.Tree()
	got, err := value.ToNative(tree)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": int64(12), "scale": []any{int64(3), int64(4)}}, got)
}

func TestLazy_TopLevelSchema(t *testing.T) {
	sprite := spriteSchema()
	res, err := reader.New(reader.WithLazy(true)).Read(spriteBuf, 1, sprite, aoc, reader.Export)
	require.NoError(t, err)
	require.NotNil(t, res.Loader)
	assert.Nil(t, res.Tree)
	assert.Nil(t, res.Record)
	assert.Equal(t, 5, res.Consumed)

	tree, err := res.Loader.Materialize()
	require.NoError(t, err)
	assert.Equal(t, "sprite", tree.Type())
}

func TestLazy_DisabledReadsEagerly(t *testing.T) {
	sch := spriteTable(spriteSchema())
	res, err := reader.New(reader.WithLazy(false)).Read(spriteBuf, 0, sch, aoc, reader.Export)
	require.NoError(t, err)
	for _, m := range mustGet(t, res.Tree, "sprites").(*value.Array).Members() {
		assert.Equal(t, value.KindContainer, m.Kind())
	}
}
