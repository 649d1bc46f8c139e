// Package version defines the game version selector threaded through every
// schema query. A GameVersion names one edition plus the set of active
// expansions; schemas branch on it to describe the on-disk layout.
package version

import (
	"fmt"
	"sort"
	"strings"
)

// Edition identifies a released game edition whose dat layout differs from the others.
type Edition uint8

// Known editions.
const (
	EditionUnknown Edition = iota
	ROR
	AOK
	AOC
	HDEdition
	AoE1DE
	AoE2DE
	SWGB
)

var editionNames = map[Edition]string{
	ROR:       "ROR",
	AOK:       "AOK",
	AOC:       "AOC",
	HDEdition: "HDEDITION",
	AoE1DE:    "AOE1DE",
	AoE2DE:    "AOE2DE",
	SWGB:      "SWGB",
}

// String returns the canonical upper-case edition id.
func (e Edition) String() string {
	if name, ok := editionNames[e]; ok {
		return name
	}
	return fmt.Sprintf("Edition(%d)", uint8(e))
}

// Expansion is a bit set of expansions layered on top of an edition.
type Expansion uint8

// Known expansions.
const (
	CloneCampaigns Expansion = 1 << iota
	Forgotten
	AfricanKingdoms
	RiseOfRajas
)

var expansionNames = map[Expansion]string{
	CloneCampaigns:  "SWGB_CC",
	Forgotten:       "HD_FORGOTTEN",
	AfricanKingdoms: "HD_AFRICAN_KINGDOMS",
	RiseOfRajas:     "HD_RISE_OF_RAJAS",
}

// expansionEdition records which edition each expansion can be applied to.
var expansionEdition = map[Expansion]Edition{
	CloneCampaigns:  SWGB,
	Forgotten:       HDEdition,
	AfricanKingdoms: HDEdition,
	RiseOfRajas:     HDEdition,
}

// GameVersion is the opaque selector passed to every schema query.
//
// Invariant: GameVersion is comparable and may be used as a map key.
type GameVersion struct {
	Edition    Edition
	Expansions Expansion
}

// New returns a GameVersion for edition with the given expansions enabled.
func New(edition Edition, expansions ...Expansion) GameVersion {
	v := GameVersion{Edition: edition}
	for _, x := range expansions {
		v.Expansions |= x
	}
	return v
}

// Has reports whether expansion x is active.
func (v GameVersion) Has(x Expansion) bool {
	return v.Expansions&x == x
}

// IsAoE1 reports whether the edition uses the Age of Empires 1 layout family.
func (v GameVersion) IsAoE1() bool {
	return v.Edition == ROR || v.Edition == AoE1DE
}

// IsDE reports whether the edition is a Definitive Edition.
func (v GameVersion) IsDE() bool {
	return v.Edition == AoE1DE || v.Edition == AoE2DE
}

// IsSWGB reports whether the edition is Star Wars: Galactic Battlegrounds.
func (v GameVersion) IsSWGB() bool {
	return v.Edition == SWGB
}

// String renders the version as EDITION[+EXPANSION...] with expansions sorted.
func (v GameVersion) String() string {
	var parts []string
	for x, name := range expansionNames {
		if v.Has(x) {
			parts = append(parts, name)
		}
	}
	sort.Strings(parts)
	if len(parts) == 0 {
		return v.Edition.String()
	}
	return v.Edition.String() + "+" + strings.Join(parts, "+")
}

// Parse builds a GameVersion from an edition id and expansion ids, matching
// names case-insensitively.
//
// Precondition: edition must name a known edition.
// Postcondition: Returns a GameVersion whose expansions all belong to the
// edition, or a non-nil error.
func Parse(edition string, expansions []string) (GameVersion, error) {
	var v GameVersion
	want := strings.ToUpper(strings.TrimSpace(edition))
	for e, name := range editionNames {
		if name == want {
			v.Edition = e
			break
		}
	}
	if v.Edition == EditionUnknown {
		return GameVersion{}, fmt.Errorf("unknown game edition %q", edition)
	}

	for _, raw := range expansions {
		want := strings.ToUpper(strings.TrimSpace(raw))
		var found Expansion
		for x, name := range expansionNames {
			if name == want {
				found = x
				break
			}
		}
		if found == 0 {
			return GameVersion{}, fmt.Errorf("unknown expansion %q", raw)
		}
		if expansionEdition[found] != v.Edition {
			return GameVersion{}, fmt.Errorf("expansion %s does not apply to edition %s", expansionNames[found], v.Edition)
		}
		v.Expansions |= found
	}
	return v, nil
}
