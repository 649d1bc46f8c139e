package datfile

import (
	"github.com/cory-johannsen/genie/internal/genie/schema"
	"github.com/cory-johannsen/genie/internal/genie/version"
)

// UnitCommand is one task a unit can perform.
var UnitCommand = schema.New("unit_command", func(v version.GameVersion) []schema.Entry {
	e := []schema.Entry{
		gen("command_used", schema.Int, "int16_t"),
		gen("command_id", schema.ID, "int16_t"),
		unknown(schema.Int, "int8_t"),
		gen("type", schema.ID, "int16_t"),
		gen("class_id", schema.ID, "int16_t"),
		gen("unit_id", schema.ID, "int16_t"),
		gen("terrain_id", schema.ID, "int16_t"),
		gen("resource_in", schema.Int, "int16_t"),
		gen("resource_multiplier", schema.Int, "int16_t"),
		gen("resource_out", schema.Int, "int16_t"),
		gen("unused_resource", schema.Int, "int16_t"),
		gen("work_value1", schema.Float, "float"),
		gen("work_value2", schema.Float, "float"),
		gen("work_range", schema.Float, "float"),
		gen("search_mode", schema.Int, "int8_t"),
		gen("search_time", schema.Float, "float"),
		gen("enable_targeting", schema.Int, "int8_t"),
		gen("combat_level_flag", schema.ID, "int8_t"),
		gen("gather_type", schema.Int, "int16_t"),
		gen("work_mode2", schema.Int, "int16_t"),
		gen("owner_type", schema.ID, "int8_t"),
		gen("carry_check", schema.Int, "int8_t"),
		gen("state_build", schema.Int, "int8_t"),
		gen("move_sprite_id", schema.ID, "int16_t"),
		gen("proceed_sprite_id", schema.ID, "int16_t"),
		gen("work_sprite_id", schema.ID, "int16_t"),
		gen("carry_sprite_id", schema.ID, "int16_t"),
		gen("resource_gather_sound_id", schema.ID, "int16_t"),
		gen("resource_deposit_sound_id", schema.ID, "int16_t"),
	}
	if v.Edition == version.AoE2DE {
		e = append(e,
			gen("wwise_resource_gather_sound_id", schema.ID, "uint32_t"),
			gen("wwise_resource_deposit_sound_id", schema.ID, "uint32_t"),
		)
	}
	return e
})

// UnitHeader lists the commands shared by every civ's copy of a unit. Units
// that do not exist carry only the sentinel byte.
var UnitHeader = schema.New("unit_header", func(version.GameVersion) []schema.Entry {
	return []schema.Entry{
		gen("exists", schema.Int, &schema.ContinueRead{Type: "uint8_t"}),
		read("unit_command_count", schema.Int, "uint16_t"),
		subdata("unit_commands", UnitCommand, schema.FieldLength("unit_command_count")),
	}
})

// UnitHeaders is the counted unit header table.
var UnitHeaders = schema.New("unit_headers", func(version.GameVersion) []schema.Entry {
	return []schema.Entry{
		read("unit_count", schema.Int, "uint32_t"),
		subdata("unit_headers", UnitHeader, schema.FieldLength("unit_count")),
	}
})

// ResourceStorage is one resource a unit carries or provides.
var ResourceStorage = schema.New("resource_storage", func(version.GameVersion) []schema.Entry {
	return []schema.Entry{
		gen("type", schema.ID, "int16_t"),
		gen("amount", schema.Float, "float"),
		gen("used_mode", schema.ID, "int8_t"),
	}
})

// DamageGraphic is drawn over a unit below a hit point threshold.
var DamageGraphic = schema.New("damage_graphic", func(v version.GameVersion) []schema.Entry {
	e := []schema.Entry{
		gen("graphic_id", schema.ID, "int16_t"),
		gen("damage_percent", schema.Int, "int8_t"),
	}
	if !v.IsAoE1() {
		e = append(e, skip("old_apply_mode", "int8_t"))
	}
	return append(e, gen("apply_mode", schema.ID, "int8_t"))
})

// HitType is one attack or armor class entry.
var HitType = schema.New("hit_type", func(version.GameVersion) []schema.Entry {
	return []schema.Entry{
		gen("type_id", schema.ID, "int16_t"),
		gen("amount", schema.Int, "int16_t"),
	}
})

// ResourceCost is one resource a unit costs to create.
var ResourceCost = schema.New("resource_cost", func(version.GameVersion) []schema.Entry {
	return []schema.Entry{
		gen("type_id", schema.ID, "int16_t"),
		gen("amount", schema.Int, "int16_t"),
		gen("enabled", schema.Bool, "int16_t"),
	}
})

// BuildingAnnex is a unit attached to a building.
var BuildingAnnex = schema.New("building_annex", func(version.GameVersion) []schema.Entry {
	return []schema.Entry{
		gen("unit_id", schema.ID, "int16_t"),
		gen("misplaced0", schema.Float, "float"),
		gen("misplaced1", schema.Float, "float"),
	}
})

// unitTypeLookup decodes the leading byte of every unit layout.
var unitTypeLookup = &schema.EnumLookup{Type: "int8_t", Name: "unit_types", Lookup: UnitTypes}

// UnitObject is the base layout shared by every unit kind.
var UnitObject = schema.New("unit_object", func(v version.GameVersion) []schema.Entry {
	e := []schema.Entry{gen("unit_type", schema.ID, unitTypeLookup)}
	if v.IsDE() {
		e = append(e, deString("name")...)
	} else {
		e = append(e, read("name_length", schema.Int, "uint16_t"))
	}
	e = append(e,
		gen("id0", schema.ID, "int16_t"),
		gen("language_dll_name", schema.ID, "uint16_t"),
		gen("language_dll_creation", schema.ID, "uint16_t"),
		gen("unit_class", schema.ID, "int16_t"),
		gen("idle_graphic0", schema.ID, "int16_t"),
	)
	if !v.IsAoE1() {
		e = append(e, gen("idle_graphic1", schema.ID, "int16_t"))
	}
	e = append(e,
		gen("dying_graphic", schema.ID, "int16_t"),
		gen("undead_graphic", schema.ID, "int16_t"),
		gen("undead_mode", schema.Int, "int8_t"),
		gen("hit_points", schema.Int, "int16_t"),
		gen("line_of_sight", schema.Float, "float"),
		gen("garrison_capacity", schema.Int, "int8_t"),
		gen("radius_x", schema.Float, "float"),
		gen("radius_y", schema.Float, "float"),
		gen("radius_z", schema.Float, "float"),
		gen("train_sound_id", schema.ID, "int16_t"),
	)
	if !v.IsAoE1() {
		e = append(e, gen("damage_sound_id", schema.ID, "int16_t"))
	}
	e = append(e, gen("dead_unit_id", schema.ID, "int16_t"))
	if v.IsDE() {
		e = append(e, gen("blood_unit_id", schema.ID, "int16_t"))
	}
	e = append(e,
		gen("placement_mode", schema.Int, "int8_t"),
		gen("can_be_built_on", schema.Bool, "int8_t"),
		gen("icon_id", schema.ID, "int16_t"),
		gen("hidden_in_editor", schema.Bool, "int8_t"),
		gen("old_portrait_icon_id", schema.ID, "int16_t"),
		gen("enabled", schema.Bool, "int8_t"),
	)
	if !v.IsAoE1() {
		e = append(e, gen("disabled", schema.Bool, "int8_t"))
	}
	e = append(e,
		gen("placement_side_terrain", schema.ArrayID, "int16_t[2]"),
		gen("placement_terrain", schema.ArrayID, "int16_t[2]"),
		gen("clearance_size", schema.ArrayFloat, "float[2]"),
		gen("elevation_mode", schema.ID, "int8_t"),
		gen("visible_in_fog", schema.ID, "int8_t"),
		gen("terrain_restriction", schema.ID, "int16_t"),
		gen("fly_mode", schema.Bool, "int8_t"),
		gen("resource_capacity", schema.Int, "int16_t"),
		gen("resource_decay", schema.Float, "float"),
		gen("blast_defense_level", schema.ID, "int8_t"),
		gen("combat_level", schema.ID, "int8_t"),
		gen("interaction_mode", schema.ID, "int8_t"),
		gen("map_draw_level", schema.ID, "int8_t"),
		gen("unit_level", schema.ID, "int8_t"),
		gen("attack_reaction", schema.Float, "float"),
		gen("minimap_color", schema.ID, "int8_t"),
	)
	if !v.IsAoE1() {
		e = append(e,
			gen("language_dll_help", schema.ID, "int32_t"),
			gen("language_dll_hotkey_text", schema.ID, "int32_t"),
			gen("hot_keys", schema.ID, "int32_t"),
			gen("recyclable", schema.Bool, "int8_t"),
			gen("enable_auto_gather", schema.Bool, "int8_t"),
			gen("doppelgaenger_on_death", schema.Bool, "int8_t"),
			gen("resource_gather_drop", schema.Int, "int8_t"),
			gen("occlusion_mode", schema.Bitfield, "uint8_t"),
			gen("obstruction_type", schema.ID, "int8_t"),
			gen("obstruction_class", schema.ID, "int8_t"),
			gen("trait", schema.Bitfield, "uint8_t"),
			gen("civilization_id", schema.ID, "int8_t"),
			gen("attribute_piece", schema.Int, "int16_t"),
		)
	}
	e = append(e,
		gen("selection_effect", schema.ID, "int8_t"),
		gen("editor_selection_color", schema.ID, "uint8_t"),
		gen("selection_shape_x", schema.Float, "float"),
		gen("selection_shape_y", schema.Float, "float"),
		gen("selection_shape_z", schema.Float, "float"),
		subdata("resource_storage", ResourceStorage, schema.Fixed(3)),
		read("damage_graphic_count", schema.Int, "uint8_t"),
		subdata("damage_graphics", DamageGraphic, schema.FieldLength("damage_graphic_count")),
		gen("sound_selection", schema.ID, "int16_t"),
		gen("sound_dying", schema.ID, "int16_t"),
		gen("old_attack_mode", schema.ID, "int8_t"),
		gen("convert_terrain", schema.Bool, "int8_t"),
	)
	if !v.IsDE() {
		e = append(e, gen("name", schema.String, "char[name_length]"))
	}
	if !v.IsAoE1() {
		e = append(e,
			gen("id1", schema.ID, "int16_t"),
			gen("id2", schema.ID, "int16_t"),
		)
	}
	return e
})

// TreeUnit adds nothing to the base layout.
var TreeUnit = schema.New("tree_unit", func(version.GameVersion) []schema.Entry {
	return []schema.Entry{include(UnitObject)}
})

// AnimatedUnit is a unit with a movement speed.
var AnimatedUnit = schema.New("animated_unit", func(version.GameVersion) []schema.Entry {
	return []schema.Entry{
		include(UnitObject),
		gen("speed", schema.Float, "float"),
	}
})

// DoppelgangerUnit mirrors another unit's appearance.
var DoppelgangerUnit = schema.New("doppelganger_unit", func(version.GameVersion) []schema.Entry {
	return []schema.Entry{include(AnimatedUnit)}
})

// MovingUnit adds walking graphics and turning.
var MovingUnit = schema.New("moving_unit", func(v version.GameVersion) []schema.Entry {
	e := []schema.Entry{
		include(DoppelgangerUnit),
		gen("move_graphics", schema.ID, "int16_t"),
	}
	if !v.IsAoE1() {
		e = append(e, gen("run_graphics", schema.ID, "int16_t"))
	}
	e = append(e,
		gen("turn_speed", schema.Float, "float"),
		gen("old_size_class", schema.ID, "int8_t"),
		gen("trail_unit_id", schema.ID, "int16_t"),
		gen("trail_options", schema.Bitfield, "uint8_t"),
		gen("trail_spacing", schema.Float, "float"),
		gen("old_move_algorithm", schema.ID, "int8_t"),
	)
	if !v.IsAoE1() {
		e = append(e,
			gen("turn_radius", schema.Float, "float"),
			gen("turn_radius_speed", schema.Float, "float"),
			gen("max_yaw_per_sec_moving", schema.Float, "float"),
			gen("stationary_yaw_revolution_time", schema.Float, "float"),
			gen("max_yaw_per_sec_stationary", schema.Float, "float"),
		)
	}
	return e
})

// ActionUnit adds task handling. AoE1 files store the unit's commands inline.
var ActionUnit = schema.New("action_unit", func(v version.GameVersion) []schema.Entry {
	e := []schema.Entry{
		include(MovingUnit),
		gen("default_task_id", schema.ID, "int16_t"),
		gen("search_radius", schema.Float, "float"),
		gen("work_rate", schema.Float, "float"),
		gen("drop_site", schema.ArrayID, "int16_t[2]"),
		gen("task_by_group", schema.Int, "int8_t"),
		gen("command_sound_id", schema.ID, "int16_t"),
		gen("stop_sound_id", schema.ID, "int16_t"),
		gen("run_pattern", schema.Int, "int8_t"),
	}
	if v.IsAoE1() {
		e = append(e,
			read("unit_command_count", schema.Int, "uint16_t"),
			subdata("unit_commands", UnitCommand, schema.FieldLength("unit_command_count")),
		)
	}
	return e
})

// ProjectileUnit is the combat layout: attacks, armor and weapon stats.
var ProjectileUnit = schema.New("projectile_unit", func(v version.GameVersion) []schema.Entry {
	e := []schema.Entry{include(ActionUnit)}
	if v.IsAoE1() {
		e = append(e, gen("base_armor", schema.Int, "uint8_t"))
	} else {
		e = append(e, gen("base_armor", schema.Int, "int16_t"))
	}
	e = append(e,
		read("attack_count", schema.Int, "uint16_t"),
		subdata("attacks", HitType, schema.FieldLength("attack_count")),
		read("armor_count", schema.Int, "uint16_t"),
		subdata("armors", HitType, schema.FieldLength("armor_count")),
		gen("boundary_id", schema.ID, "int16_t"),
		gen("weapon_range_max", schema.Float, "float"),
		gen("blast_range", schema.Float, "float"),
		gen("attack_speed", schema.Float, "float"),
		gen("attack_projectile_primary_unit_id", schema.ID, "int16_t"),
		gen("accuracy", schema.Int, "int16_t"),
		gen("break_off_combat", schema.Int, "int8_t"),
		gen("frame_delay", schema.Int, "int16_t"),
		gen("weapon_offset", schema.ArrayFloat, "float[3]"),
		gen("blast_level_offence", schema.ID, "int8_t"),
	)
	if !v.IsAoE1() {
		e = append(e, gen("weapon_range_min", schema.Float, "float"))
	}
	e = append(e,
		gen("accuracy_dispersion", schema.Float, "float"),
		gen("attack_sprite_id", schema.ID, "int16_t"),
		gen("melee_armor_displayed", schema.Int, "int16_t"),
		gen("attack_displayed", schema.Int, "int16_t"),
		gen("range_displayed", schema.Float, "float"),
		gen("reload_time_displayed", schema.Float, "float"),
	)
	return e
})

// MissileUnit is a flying projectile.
var MissileUnit = schema.New("missile_unit", func(version.GameVersion) []schema.Entry {
	return []schema.Entry{
		include(ProjectileUnit),
		gen("projectile_type", schema.ID, "int8_t"),
		gen("smart_mode", schema.ID, "int8_t"),
		gen("drop_animation_mode", schema.ID, "int8_t"),
		gen("penetration_mode", schema.ID, "int8_t"),
		gen("area_of_effect_special", schema.ID, "int8_t"),
		gen("projectile_arc", schema.Float, "float"),
	}
})

// LivingUnit is a trainable unit with a cost.
var LivingUnit = schema.New("living_unit", func(v version.GameVersion) []schema.Entry {
	e := []schema.Entry{
		include(ProjectileUnit),
		subdata("resource_cost", ResourceCost, schema.Fixed(3)),
		gen("creation_time", schema.Int, "int16_t"),
		gen("train_location_id", schema.ID, "int16_t"),
		gen("creation_button_id", schema.ID, "int8_t"),
	}
	if !v.IsAoE1() {
		e = append(e,
			gen("rear_attack_modifier", schema.Float, "float"),
			gen("flank_attack_modifier", schema.Float, "float"),
			gen("creatable_type", schema.ID, "int8_t"),
			gen("hero_mode", schema.Bitfield, "uint8_t"),
			gen("garrison_graphic", schema.ID, "int32_t"),
			gen("attack_projectile_count", schema.Float, "float"),
			gen("attack_projectile_max_count", schema.Int, "int8_t"),
			gen("attack_projectile_spawning_area", schema.ArrayFloat, "float[3]"),
			gen("attack_projectile_secondary_unit_id", schema.ID, "int32_t"),
			gen("special_graphic_id", schema.ID, "int32_t"),
			gen("special_activation", schema.ID, "int8_t"),
		)
	}
	return append(e, gen("pierce_armor_displayed", schema.Int, "int16_t"))
})

// BuildingUnit adds construction and garrison data.
var BuildingUnit = schema.New("building_unit", func(v version.GameVersion) []schema.Entry {
	e := []schema.Entry{
		include(LivingUnit),
		gen("construction_graphic_id", schema.ID, "int16_t"),
	}
	if !v.IsAoE1() {
		e = append(e, gen("snow_graphic_id", schema.ID, "int16_t"))
	}
	e = append(e,
		gen("adjacent_mode", schema.Int, "int8_t"),
		gen("graphics_angle", schema.Int, "int16_t"),
		gen("disappears_when_built", schema.Bool, "int8_t"),
		gen("stack_unit_id", schema.ID, "int16_t"),
		gen("foundation_terrain_id", schema.ID, "int16_t"),
		gen("old_overlay_id", schema.ID, "int16_t"),
		gen("research_id", schema.ID, "int16_t"),
	)
	if !v.IsAoE1() {
		e = append(e,
			gen("can_burn", schema.Bool, "int8_t"),
			subdata("building_annex", BuildingAnnex, schema.Fixed(4)),
			gen("head_unit_id", schema.ID, "int16_t"),
			gen("transform_unit_id", schema.ID, "int16_t"),
			gen("transform_sound_id", schema.ID, "int16_t"),
		)
	}
	e = append(e, gen("construction_sound_id", schema.ID, "int16_t"))
	if !v.IsAoE1() {
		e = append(e,
			gen("garrison_type", schema.Bitfield, "uint8_t"),
			gen("garrison_heal_rate", schema.Float, "float"),
			gen("garrison_repair_rate", schema.Float, "float"),
			gen("salvage_unit_id", schema.ID, "int16_t"),
			gen("salvage_attributes", schema.ArrayInt, "int8_t[6]"),
		)
	}
	return e
})

// UnitClasses maps each unit type name to its layout.
var UnitClasses = map[string]*schema.Schema{
	"OBJECT":       UnitObject,
	"ANIMATED":     AnimatedUnit,
	"DOPPELGANGER": DoppelgangerUnit,
	"MOVING":       MovingUnit,
	"ACTION":       ActionUnit,
	"PROJECTILE":   ProjectileUnit,
	"MISSILE":      MissileUnit,
	"LIVING":       LivingUnit,
	"BUILDING":     BuildingUnit,
	"TREE":         TreeUnit,
}
