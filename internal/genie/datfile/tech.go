package datfile

import (
	"github.com/cory-johannsen/genie/internal/genie/schema"
	"github.com/cory-johannsen/genie/internal/genie/version"
)

// Effect is a single change applied when a bundle fires.
var Effect = schema.New("effect", func(version.GameVersion) []schema.Entry {
	return []schema.Entry{
		gen("type_id", schema.ID, &schema.EnumLookup{Type: "int8_t", Name: "effect_apply_type", Lookup: EffectApplyType}),
		gen("attr_a", schema.Int, "int16_t"),
		gen("attr_b", schema.Int, "int16_t"),
		gen("attr_c", schema.Int, "int16_t"),
		gen("attr_d", schema.Float, "float"),
	}
})

// EffectBundle is a named list of effects, e.g. a technology's result.
var EffectBundle = schema.New("effect_bundle", func(v version.GameVersion) []schema.Entry {
	var e []schema.Entry
	if v.Edition == version.AoE2DE {
		e = deString("name")
	} else {
		e = []schema.Entry{gen("name", schema.String, "char[31]")}
	}
	return append(e,
		read("effect_count", schema.Int, "uint16_t"),
		subdata("effects", Effect, schema.FieldLength("effect_count")),
	)
})

// EffectBundles is the counted effect bundle table.
var EffectBundles = schema.New("effect_bundles", func(version.GameVersion) []schema.Entry {
	return []schema.Entry{
		read("effect_bundle_count", schema.Int, "uint32_t"),
		subdata("effect_bundles", EffectBundle, schema.FieldLength("effect_bundle_count")),
	}
})
