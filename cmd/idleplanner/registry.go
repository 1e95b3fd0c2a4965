package main

import (
	"fmt"

	"github.com/lox/idleplanner/internal/ids"
	"github.com/lox/idleplanner/internal/registry"
)

// RegistryCmd lists a realm's static data.
type RegistryCmd struct {
	Realm string `help:"Realm HCL file (bundled fixture realm when empty)"`
	Kind  string `default:"actions" enum:"actions,items,offers" help:"What to list: actions, items or offers"`
}

// Run implements the kong command.
func (c *RegistryCmd) Run() error {
	reg := registry.Fixture()
	if c.Realm != "" {
		var err error
		if reg, err = registry.LoadRealm(c.Realm); err != nil {
			return err
		}
	}

	switch c.Kind {
	case "actions":
		for _, a := range reg.Actions() {
			kind := "produces"
			if a.Consuming() {
				kind = "consumes"
			}
			if a.Stochastic() {
				kind = "stochastic"
			}
			fmt.Printf("%-45s skill=%s unlock=%-3d ticks=[%d,%d] xp=%-6.0f %s\n",
				a.ID, ids.DisplayName(a.Skill), a.UnlockLevel,
				a.MinTicks, a.MaxTicks, a.Variant(0).XP, kind)
		}
	case "items":
		for _, item := range reg.Items() {
			fmt.Printf("%-30s sell=%-5d heal=%d\n", item.ID, item.SellValue, item.HealValue)
		}
	case "offers":
		for _, offer := range reg.Offers() {
			fmt.Printf("%-30s cost=%-6d chain=%-10s tier=%d scale=%.2f\n",
				offer.ID, offer.Cost, offer.Chain, offer.Tier, offer.DurationScale)
		}
	}
	return nil
}
