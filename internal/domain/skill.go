package domain

import (
	"fmt"
	"strings"
)

// Skill is a progression category credits can be redeemed into.
type Skill string

const (
	SkillAcrobatics  Skill = "acrobatics"
	SkillAlchemy     Skill = "alchemy"
	SkillArchery     Skill = "archery"
	SkillAxes        Skill = "axes"
	SkillExcavation  Skill = "excavation"
	SkillFishing     Skill = "fishing"
	SkillHerbalism   Skill = "herbalism"
	SkillMining      Skill = "mining"
	SkillRepair      Skill = "repair"
	SkillSwords      Skill = "swords"
	SkillTaming      Skill = "taming"
	SkillUnarmed     Skill = "unarmed"
	SkillWoodcutting Skill = "woodcutting"

	// Child skills level up through their parents and cannot be
	// redeemed into directly.
	SkillSalvage  Skill = "salvage"
	SkillSmelting Skill = "smelting"
)

var redeemableSkills = map[Skill]bool{
	SkillAcrobatics:  true,
	SkillAlchemy:     true,
	SkillArchery:     true,
	SkillAxes:        true,
	SkillExcavation:  true,
	SkillFishing:     true,
	SkillHerbalism:   true,
	SkillMining:      true,
	SkillRepair:      true,
	SkillSwords:      true,
	SkillTaming:      true,
	SkillUnarmed:     true,
	SkillWoodcutting: true,
}

var childSkills = map[Skill]bool{
	SkillSalvage:  true,
	SkillSmelting: true,
}

// ParseSkill parses a skill name, case-insensitively.
func ParseSkill(s string) (Skill, error) {
	skill := Skill(strings.ToLower(strings.TrimSpace(s)))
	if redeemableSkills[skill] || childSkills[skill] {
		return skill, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSkill, s)
}

// Redeemable reports whether the skill can be a redemption target.
func (s Skill) Redeemable() bool {
	return redeemableSkills[s]
}

// String returns the skill name.
func (s Skill) String() string {
	return string(s)
}

// RedeemableSkills returns all redeemable skills in a stable order.
func RedeemableSkills() []Skill {
	return []Skill{
		SkillAcrobatics, SkillAlchemy, SkillArchery, SkillAxes,
		SkillExcavation, SkillFishing, SkillHerbalism, SkillMining,
		SkillRepair, SkillSwords, SkillTaming, SkillUnarmed,
		SkillWoodcutting,
	}
}
