package registry

import "github.com/lox/idleplanner/internal/ids"

// Fixture ids for the bundled "ember" realm used by tests, examples and
// the CLI when no realm files are given.
const (
	SkillWoodcutting ids.SkillID = "ember:woodcutting"
	SkillFiremaking  ids.SkillID = "ember:firemaking"
	SkillMining      ids.SkillID = "ember:mining"
	SkillSmithing    ids.SkillID = "ember:smithing"
	SkillThieving    ids.SkillID = "ember:thieving"

	ItemOakLog    ids.ItemID = "ember:oak_log"
	ItemWillowLog ids.ItemID = "ember:willow_log"
	ItemYewLog    ids.ItemID = "ember:yew_log"
	ItemCopperOre ids.ItemID = "ember:copper_ore"
	ItemIronOre   ids.ItemID = "ember:iron_ore"
	ItemCopperBar ids.ItemID = "ember:copper_bar"
	ItemIronBar   ids.ItemID = "ember:iron_bar"

	ActionOakTree    ids.ActionID = "ember:woodcutting/ember:oak_tree"
	ActionWillowTree ids.ActionID = "ember:woodcutting/ember:willow_tree"
	ActionYewTree    ids.ActionID = "ember:woodcutting/ember:yew_tree"
	ActionBurnOak    ids.ActionID = "ember:firemaking/ember:burn_oak"
	ActionBurnWillow ids.ActionID = "ember:firemaking/ember:burn_willow"
	ActionCopperVein ids.ActionID = "ember:mining/ember:copper_vein"
	ActionIronVein   ids.ActionID = "ember:mining/ember:iron_vein"
	ActionSmeltCu    ids.ActionID = "ember:smithing/ember:smelt_copper"
	ActionSmeltFe    ids.ActionID = "ember:smithing/ember:smelt_iron"
	ActionPickpocket ids.ActionID = "ember:thieving/ember:villager"

	OfferIronAxe  ids.OfferID = "ember:iron_axe"
	OfferSteelAxe ids.OfferID = "ember:steel_axe"
	OfferIronPick ids.OfferID = "ember:iron_pickaxe"
)

// Fixture returns the bundled realm. It is deliberately small but
// exercises every planner feature: plain producers, a stochastic
// hp-loss action, two consumer skills, tool chains and unlock ladders.
func Fixture() *Registry {
	items := []Item{
		{ID: ItemOakLog, SellValue: 5},
		{ID: ItemWillowLog, SellValue: 12},
		{ID: ItemYewLog, SellValue: 40},
		{ID: ItemCopperOre, SellValue: 4},
		{ID: ItemIronOre, SellValue: 9},
		{ID: ItemCopperBar, SellValue: 14},
		{ID: ItemIronBar, SellValue: 30},
	}

	offers := []Offer{
		{ID: OfferIronAxe, Cost: 50, Skill: SkillWoodcutting, Chain: "axe", Tier: 1, DurationScale: 0.9},
		{ID: OfferSteelAxe, Cost: 500, Skill: SkillWoodcutting, Chain: "axe", Tier: 2, RequiresLevel: 10, DurationScale: 0.85},
		{ID: OfferIronPick, Cost: 120, Skill: SkillMining, Chain: "pickaxe", Tier: 1, DurationScale: 0.9},
	}

	actions := []Action{
		{
			ID: ActionOakTree, Skill: SkillWoodcutting, UnlockLevel: 1,
			MinTicks: 3, MaxTicks: 3, ToolChain: "axe",
			Variants: []Variant{{Outputs: []Output{{Item: ItemOakLog, Quantity: 1}}, XP: 10}},
		},
		{
			ID: ActionWillowTree, Skill: SkillWoodcutting, UnlockLevel: 10,
			MinTicks: 4, MaxTicks: 4, ToolChain: "axe",
			Variants: []Variant{{Outputs: []Output{{Item: ItemWillowLog, Quantity: 1}}, XP: 22}},
		},
		{
			ID: ActionYewTree, Skill: SkillWoodcutting, UnlockLevel: 30,
			MinTicks: 6, MaxTicks: 8, ToolChain: "axe",
			Variants: []Variant{{Outputs: []Output{{Item: ItemYewLog, Quantity: 1}}, XP: 70}},
		},
		{
			ID: ActionBurnOak, Skill: SkillFiremaking, UnlockLevel: 1,
			MinTicks: 2, MaxTicks: 2, Mastery: MasteryBurn,
			Variants: []Variant{{Inputs: []Input{{Item: ItemOakLog, Quantity: 1}}, XP: 15}},
		},
		{
			ID: ActionBurnWillow, Skill: SkillFiremaking, UnlockLevel: 10,
			MinTicks: 2, MaxTicks: 2, Mastery: MasteryBurn,
			Variants: []Variant{{Inputs: []Input{{Item: ItemWillowLog, Quantity: 1}}, XP: 32}},
		},
		{
			ID: ActionCopperVein, Skill: SkillMining, UnlockLevel: 1,
			MinTicks: 3, MaxTicks: 3, ToolChain: "pickaxe",
			Variants: []Variant{{Outputs: []Output{{Item: ItemCopperOre, Quantity: 1}}, XP: 8}},
		},
		{
			ID: ActionIronVein, Skill: SkillMining, UnlockLevel: 15,
			MinTicks: 4, MaxTicks: 4, ToolChain: "pickaxe",
			Variants: []Variant{{Outputs: []Output{{Item: ItemIronOre, Quantity: 1}}, XP: 18}},
		},
		{
			ID: ActionSmeltCu, Skill: SkillSmithing, UnlockLevel: 1,
			MinTicks: 4, MaxTicks: 4, Mastery: MasteryArtisan,
			Variants: []Variant{{
				Inputs:  []Input{{Item: ItemCopperOre, Quantity: 1}},
				Outputs: []Output{{Item: ItemCopperBar, Quantity: 1}},
				XP:      12,
			}},
		},
		{
			ID: ActionSmeltFe, Skill: SkillSmithing, UnlockLevel: 10,
			MinTicks: 5, MaxTicks: 5, Mastery: MasteryArtisan,
			Variants: []Variant{{
				Inputs:  []Input{{Item: ItemIronOre, Quantity: 1}},
				Outputs: []Output{{Item: ItemIronBar, Quantity: 1}},
				XP:      25,
			}},
		},
		{
			ID: ActionPickpocket, Skill: SkillThieving, UnlockLevel: 1,
			MinTicks: 3, MaxTicks: 3,
			Perception: 120, MaxGold: 12, StunTicks: 5, MaxHit: 4,
			Variants: []Variant{{XP: 9}},
		},
	}

	r, err := New(actions, items, offers, StandardTable(99))
	if err != nil {
		panic("fixture realm invalid: " + err.Error())
	}
	return r
}
