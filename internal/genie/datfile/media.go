package datfile

import (
	"github.com/cory-johannsen/genie/internal/genie/schema"
	"github.com/cory-johannsen/genie/internal/genie/version"
)

// TerrainPassGraphic is the sprite set used when a unit crosses a terrain.
var TerrainPassGraphic = schema.New("terrain_pass_graphic", func(v version.GameVersion) []schema.Entry {
	e := []schema.Entry{
		gen("slp_id_exit_tile", schema.ID, "int32_t"),
		gen("slp_id_enter_tile", schema.ID, "int32_t"),
		gen("slp_id_walk_tile", schema.ID, "int32_t"),
	}
	if v.IsSWGB() {
		return append(e, gen("walk_sprite_rate", schema.Float, "float"))
	}
	return append(e, gen("replication_amount", schema.Int, "int32_t"))
})

// TerrainRestriction holds per-terrain damage multipliers. It is read with
// terrain_count passed in from the file header.
var TerrainRestriction = schema.New("terrain_restriction", func(v version.GameVersion) []schema.Entry {
	e := []schema.Entry{
		gen("accessible_dmgmultiplier", schema.ArrayFloat, "float[terrain_count]"),
	}
	if !v.IsAoE1() {
		e = append(e, subdata("pass_graphics", TerrainPassGraphic, schema.FieldLength("terrain_count")))
	}
	return e
})

// PlayerColor is one entry of the player color table.
var PlayerColor = schema.New("player_color", func(v version.GameVersion) []schema.Entry {
	if v.IsAoE1() {
		return []schema.Entry{
			gen("name", schema.String, "char[30]"),
			gen("id", schema.ID, "int16_t"),
			gen("resource_id", schema.ID, "int16_t"),
			gen("minimap_color", schema.ID, "uint8_t"),
			gen("type", schema.ID, "uint8_t"),
		}
	}
	return []schema.Entry{
		gen("id", schema.ID, "int32_t"),
		gen("player_color_base", schema.ID, "int32_t"),
		gen("outline_color", schema.ID, "int32_t"),
		gen("unit_selection_color1", schema.ID, "int32_t"),
		gen("unit_selection_color2", schema.ID, "int32_t"),
		gen("minimap_color1", schema.ID, "int32_t"),
		gen("minimap_color2", schema.ID, "int32_t"),
		gen("minimap_color3", schema.ID, "int32_t"),
		gen("statistics_text_color", schema.ID, "int32_t"),
	}
})

// SoundItem is one audio file a sound may play.
var SoundItem = schema.New("sound_item", func(v version.GameVersion) []schema.Entry {
	var e []schema.Entry
	switch {
	case v.IsDE():
		e = deString("filename")
	case v.IsSWGB():
		e = []schema.Entry{gen("filename", schema.String, "char[27]")}
	default:
		e = []schema.Entry{gen("filename", schema.String, "char[13]")}
	}
	e = append(e,
		gen("resource_id", schema.ID, "int32_t"),
		gen("probability", schema.Int, "int16_t"),
	)
	if !v.IsAoE1() {
		e = append(e,
			gen("civilization_id", schema.ID, "int16_t"),
			gen("icon_set", schema.ID, "int16_t"),
		)
	}
	return e
})

// Sound groups the files played for one sound id.
var Sound = schema.NewLazy("sound", func(v version.GameVersion) []schema.Entry {
	e := []schema.Entry{
		gen("sound_id", schema.ID, "int16_t"),
		gen("play_delay", schema.Int, "int16_t"),
		read("file_count", schema.Int, "uint16_t"),
		gen("cache_time", schema.Int, "int32_t"),
	}
	if v.Edition == version.AoE2DE {
		e = append(e, gen("total_probability", schema.Int, "int16_t"))
	}
	return append(e, subdata("sound_items", SoundItem, schema.FieldLength("file_count")))
})

// GraphicDelta is a sub-sprite drawn relative to its parent graphic.
var GraphicDelta = schema.New("graphic_delta", func(version.GameVersion) []schema.Entry {
	return []schema.Entry{
		gen("graphic_id", schema.ID, "int16_t"),
		skip("padding_1", &schema.Zero{Type: "int16_t"}),
		skip("sprite_ptr", "int32_t"),
		gen("offset_x", schema.Int, "int16_t"),
		gen("offset_y", schema.Int, "int16_t"),
		gen("display_angle", schema.Int, "int16_t"),
		skip("padding_2", "int16_t"),
	}
})

// SoundProp attaches a sound to an animation frame.
var SoundProp = schema.New("sound_prop", func(v version.GameVersion) []schema.Entry {
	e := []schema.Entry{
		gen("sound_delay", schema.Int, "int16_t"),
		gen("sound_id", schema.ID, "int16_t"),
	}
	if v.Edition == version.AoE2DE {
		e = append(e, gen("wwise_sound_id", schema.ID, "uint32_t"))
	}
	return e
})

// GraphicAttackSound holds the three sound slots of one graphic angle.
var GraphicAttackSound = schema.New("graphic_attack_sound", func(version.GameVersion) []schema.Entry {
	return []schema.Entry{
		subdata("sound_props", SoundProp, schema.Fixed(3)),
	}
})

// attackSoundCount is angle_count when the graphic uses attack sounds.
func attackSoundCount(rec schema.Lookup) (int, error) {
	used, err := rec.Int("attack_sound_used")
	if err != nil {
		return 0, err
	}
	if used == 0 {
		return 0, nil
	}
	angles, err := rec.Int("angle_count")
	return int(angles), err
}

// Graphic describes one sprite animation.
var Graphic = schema.NewLazy("graphic", func(v version.GameVersion) []schema.Entry {
	var e []schema.Entry
	switch {
	case v.IsDE():
		e = append(e, deString("name")...)
		e = append(e, deString("filename")...)
		if v.Edition == version.AoE2DE {
			e = append(e, deString("particle_effect_name")...)
		}
	case v.IsSWGB():
		e = append(e,
			gen("name", schema.String, "char[25]"),
			gen("filename", schema.String, "char[25]"),
		)
	default:
		e = append(e,
			gen("name", schema.String, "char[21]"),
			gen("filename", schema.String, "char[13]"),
		)
	}
	e = append(e,
		gen("slp_id", schema.ID, "int32_t"),
		skip("is_loaded", "int8_t"),
		skip("old_color_flag", "int8_t"),
		gen("layer", schema.ID, &schema.EnumLookup{Type: "int8_t", Name: "graphics_layer", Lookup: GraphicsLayer}),
		gen("player_color_force_id", schema.ID, "int8_t"),
		gen("adapt_color", schema.Int, "int8_t"),
		gen("transparent_selection", schema.Int, "uint8_t"),
		gen("coordinates", schema.ArrayInt, "int16_t[4]"),
		read("delta_count", schema.Int, "uint16_t"),
		gen("sound_id", schema.ID, "int16_t"),
	)
	if v.Edition == version.AoE2DE {
		e = append(e, gen("wwise_sound_id", schema.ID, "uint32_t"))
	}
	e = append(e,
		read("attack_sound_used", schema.Int, "uint8_t"),
		gen("frame_count", schema.Int, "uint16_t"),
		gen("angle_count", schema.Int, "uint16_t"),
		gen("speed_adjust", schema.Float, "float"),
		gen("frame_rate", schema.Float, "float"),
		gen("replay_delay", schema.Float, "float"),
		gen("sequence_type", schema.ID, "int8_t"),
		gen("graphic_id", schema.ID, "int16_t"),
		gen("mirroring_mode", schema.ID, "int8_t"),
	)
	if !v.IsAoE1() {
		e = append(e, gen("editor_flag", schema.Int, "int8_t"))
	}
	return append(e,
		subdata("graphic_deltas", GraphicDelta, schema.FieldLength("delta_count")),
		subdata("graphic_attack_sounds", GraphicAttackSound, schema.LengthFunc(attackSoundCount)),
	)
})

// EmpiresDat is the leading media section of an empires*.dat file: the
// version string, terrain restrictions, player colors, sounds and graphics.
var EmpiresDat = schema.New("empires_dat", func(v version.GameVersion) []schema.Entry {
	e := []schema.Entry{gen("versionstr", schema.String, &schema.CharArray{Length: schema.Fixed(8)})}
	if v.IsSWGB() {
		e = append(e,
			gen("civ_count_swgb", schema.Int, "uint16_t"),
			unknown(schema.Int, "int32_t"),
			unknown(schema.Int, "int32_t"),
			gen("blend_mode_count_swgb", schema.Int, "int32_t"),
			gen("max_blend_mode_count_swgb", schema.Int, "int32_t"),
		)
	}
	e = append(e,
		read("terrain_restriction_count", schema.Int, "uint16_t"),
		read("terrain_count", schema.Int, "uint16_t"),
		read("float_ptr_terrain_tables", schema.ArrayInt, "int32_t[terrain_restriction_count]"),
	)
	if !v.IsAoE1() {
		e = append(e, read("terrain_pass_graphics_ptrs", schema.ArrayInt, "int32_t[terrain_restriction_count]"))
	}
	return append(e,
		gen("terrain_restrictions", schema.ArrayContainer, &schema.Subdata{
			Schema:     TerrainRestriction,
			Length:     schema.FieldLength("terrain_restriction_count"),
			PassedArgs: []string{"terrain_count"},
		}),
		read("player_color_count", schema.Int, "uint16_t"),
		subdata("player_colors", PlayerColor, schema.FieldLength("player_color_count")),
		read("sound_count", schema.Int, "uint16_t"),
		subdata("sounds", Sound, schema.FieldLength("sound_count")),
		read("graphic_count", schema.Int, "uint16_t"),
		read("graphic_ptrs", schema.ArrayInt, "uint32_t[graphic_count]"),
		gen("graphics", schema.ArrayContainer, &schema.Subdata{
			Schema:   Graphic,
			Length:   schema.FieldLength("graphic_count"),
			OffsetTo: schema.GatePositive("graphic_ptrs"),
		}),
	)
})
