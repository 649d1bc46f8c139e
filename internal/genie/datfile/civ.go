package datfile

import (
	"github.com/cory-johannsen/genie/internal/genie/schema"
	"github.com/cory-johannsen/genie/internal/genie/version"
)

// Civ is one civilization: its starting resources and its copy of every unit.
// Units absent for the civ have a zero offset and no bytes.
var Civ = schema.New("civ", func(v version.GameVersion) []schema.Entry {
	e := []schema.Entry{skip("player_type", "int8_t")}
	if v.IsDE() {
		e = append(e, deString("name")...)
	} else {
		e = append(e, gen("name", schema.String, "char[20]"))
	}
	e = append(e,
		read("resources_count", schema.Int, "uint16_t"),
		gen("tech_tree_id", schema.ID, "int16_t"),
	)
	if !v.IsAoE1() {
		e = append(e, gen("team_bonus_id", schema.ID, "int16_t"))
		if v.IsSWGB() {
			e = append(e,
				gen("name2", schema.String, "char[20]"),
				gen("unique_unit_techs", schema.ArrayID, "int16_t[4]"),
			)
		}
	}
	return append(e,
		gen("resources", schema.ArrayFloat, "float[resources_count]"),
		gen("icon_set", schema.ID, "int8_t"),
		gen("unit_count", schema.Int, "uint16_t"),
		read("unit_offsets", schema.ArrayInt, "int32_t[unit_count]"),
		gen("units", schema.ArrayContainer, &schema.Multisubtype{
			TypeName:     "unit_types",
			Discriminant: read("unit_type", schema.ID, unitTypeLookup),
			Classes:      UnitClasses,
			Length:       schema.FieldLength("unit_count"),
			OffsetTo:     schema.GatePositive("unit_offsets"),
		}),
	)
})

// Civs is the counted civilization table.
var Civs = schema.New("civs", func(version.GameVersion) []schema.Entry {
	return []schema.Entry{
		read("civ_count", schema.Int, "uint16_t"),
		subdata("civs", Civ, schema.FieldLength("civ_count")),
	}
})
