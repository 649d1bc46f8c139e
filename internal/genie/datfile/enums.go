package datfile

// GraphicsLayer names the draw layer of a graphic.
var GraphicsLayer = map[int64]string{
	0:  "DUMMY",
	1:  "TERRAIN",
	2:  "GRASS_PATCH",
	3:  "DE2_CLIFF",
	4:  "AOE1_DIRT",
	5:  "DE1_DESTRUCTION",
	6:  "SHADOW",
	7:  "RUBBLE",
	8:  "PLANT",
	9:  "UNKNOWN_9",
	10: "SWGB_EFFECT",
	11: "UNIT_LOW",
	12: "FISH",
	19: "CRATER",
	20: "UNIT",
	21: "BLACKSMITH_SMOKE",
	22: "SELECTION",
	30: "FLYING_UNIT",
	40: "EFFECT",
	50: "UNKNOWN_50",
}

// EffectApplyType names what an effect does.
var EffectApplyType = map[int64]string{
	-1:  "DISABLED",
	0:   "ATTRIBUTE_ABSSET",
	1:   "RESOURCE_MODIFY",
	2:   "UNIT_ENABLED",
	3:   "UNIT_UPGRADE",
	4:   "ATTRIBUTE_RELSET",
	5:   "ATTRIBUTE_MUL",
	6:   "RESOURCE_MUL",
	7:   "SPAWN_UNIT",
	8:   "MODIFY_TECH",
	9:   "SET_PLAYER_CIV_NAME",
	10:  "TEAM_ATTRIBUTE_ABSSET",
	11:  "TEAM_RESOURCE_MODIFY",
	12:  "TEAM_UNIT_ENABLED",
	13:  "TEAM_UNIT_UPGRADE",
	14:  "TEAM_ATTRIBUTE_RELSET",
	15:  "TEAM_ATTRIBUTE_MUL",
	16:  "TEAM_RESOURCE_MUL",
	101: "TECHCOST_MODIFY",
	102: "TECH_TOGGLE",
	103: "TECH_TIME_MODIFY",
}

// UnitTypes names the unit kinds. The code selects the unit layout.
var UnitTypes = map[int64]string{
	10: "OBJECT",
	20: "ANIMATED",
	25: "DOPPELGANGER",
	30: "MOVING",
	40: "ACTION",
	50: "PROJECTILE",
	60: "MISSILE",
	70: "LIVING",
	80: "BUILDING",
	90: "TREE",
}
