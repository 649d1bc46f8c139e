package reader_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/genie/internal/genie/reader"
	"github.com/cory-johannsen/genie/internal/genie/schema"
)

func TestRecord_Lookups(t *testing.T) {
	child := reader.NewRecord("delta")
	child.Set("graphic_id", int64(4))

	r := reader.NewRecord("graphic")
	r.Set("name", "archer")
	r.Set("layer", schema.EnumValue{Code: 20, Name: "OBJECT"})
	r.Set("speed", 1.5)
	r.Set("big", uint64(math.MaxUint64))
	r.Set("offsets", []uint64{1, 2})
	r.Set("delta", child)
	r.Set("name", "archer2")

	assert.Equal(t, []string{"name", "layer", "speed", "big", "offsets", "delta"}, r.Names())
	assert.Equal(t, "graphic", r.Schema())

	s, err := r.String("name")
	require.NoError(t, err)
	assert.Equal(t, "archer2", s)

	code, err := r.Int("layer")
	require.NoError(t, err)
	assert.Equal(t, int64(20), code)
	s, err = r.String("layer")
	require.NoError(t, err)
	assert.Equal(t, "OBJECT", s)

	f, err := r.Float("speed")
	require.NoError(t, err)
	assert.Equal(t, 1.5, f)

	id, err := r.Int("delta.graphic_id")
	require.NoError(t, err)
	assert.Equal(t, int64(4), id)

	ints, err := r.Ints("offsets")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ints)

	_, err = r.Int("big")
	assert.ErrorIs(t, err, reader.ErrFieldType)
	_, err = r.Int("name")
	assert.ErrorIs(t, err, reader.ErrFieldType)
	_, err = r.Int("missing")
	assert.ErrorIs(t, err, reader.ErrUnknownField)
	_, err = r.Int("name.inner")
	assert.ErrorIs(t, err, reader.ErrUnknownField)
	_, err = r.Child("speed")
	assert.ErrorIs(t, err, reader.ErrFieldType)
	_, err = r.Slots("delta")
	assert.ErrorIs(t, err, reader.ErrFieldType)
}
