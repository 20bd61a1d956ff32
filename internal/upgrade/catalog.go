package upgrade

import (
	"sort"

	"github.com/eaglerock1337/tomeclicker-sub000/internal/engine"
)

// Reason explains a refused purchase.
type Reason string

const (
	ReasonNotFound     Reason = "not_found"
	ReasonMaxLevel     Reason = "max_level"
	ReasonCannotAfford Reason = "cannot_afford"
)

func (r Reason) IsValid() bool {
	switch r {
	case ReasonNotFound, ReasonMaxLevel, ReasonCannotAfford:
		return true
	default:
		return false
	}
}

// Wallet is the EXP balance purchases draw from.
type Wallet interface {
	Exp() float64
	Spend(amount float64)
}

// PurchaseResult is returned by Catalog.Purchase. On failure nothing changed.
type PurchaseResult struct {
	OK       bool
	Reason   Reason
	Spent    float64
	NewLevel int
}

// Catalog is the authoritative set of upgrades keyed by id.
type Catalog struct {
	defs     []engine.Upgrade
	upgrades map[string]*engine.Upgrade
	wallet   Wallet
}

// NewCatalog builds a catalog with every upgrade at level 0.
func NewCatalog(defs []engine.Upgrade, wallet Wallet) *Catalog {
	c := &Catalog{defs: make([]engine.Upgrade, len(defs)), wallet: wallet}
	copy(c.defs, defs)
	c.upgrades = c.fresh()
	return c
}

func (c *Catalog) fresh() map[string]*engine.Upgrade {
	out := make(map[string]*engine.Upgrade, len(c.defs))
	for _, d := range c.defs {
		u := d
		u.CurrentLevel = 0
		out[u.ID] = &u
	}
	return out
}

// Get returns a copy of the upgrade with the given id.
func (c *Catalog) Get(id string) (engine.Upgrade, bool) {
	u, ok := c.upgrades[id]
	if !ok {
		return engine.Upgrade{}, false
	}
	return *u, true
}

// List returns copies of every upgrade sorted by id. Aggregates read this order.
func (c *Catalog) List() []engine.Upgrade {
	out := make([]engine.Upgrade, 0, len(c.upgrades))
	for _, u := range c.upgrades {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Visible returns the upgrades whose minLevel the character level satisfies.
func (c *Catalog) Visible(characterLevel int) []engine.Upgrade {
	all := c.List()
	out := all[:0]
	for _, u := range all {
		if u.MinLevel <= characterLevel {
			out = append(out, u)
		}
	}
	return out
}

// Cost is the price of the next level of id, or 0 for an unknown id.
func (c *Catalog) Cost(id string) float64 {
	u, ok := c.upgrades[id]
	if !ok {
		return 0
	}
	return engine.UpgradeCost(*u)
}

func (c *Catalog) CanAfford(id string) bool {
	return c.wallet.Exp() >= c.Cost(id)
}

func (c *Catalog) CanPurchase(id string) bool {
	u, ok := c.upgrades[id]
	if !ok {
		return false
	}
	return c.CanAfford(id) && u.CurrentLevel < u.MaxLevel
}

// Purchase buys one level of id. Callers must re-derive multipliers after a success.
func (c *Catalog) Purchase(id string) PurchaseResult {
	u, ok := c.upgrades[id]
	if !ok {
		return PurchaseResult{Reason: ReasonNotFound}
	}
	if u.CurrentLevel >= u.MaxLevel {
		return PurchaseResult{Reason: ReasonMaxLevel, NewLevel: u.CurrentLevel}
	}
	cost := engine.UpgradeCost(*u)
	if c.wallet.Exp() < cost {
		return PurchaseResult{Reason: ReasonCannotAfford, NewLevel: u.CurrentLevel}
	}
	c.wallet.Spend(cost)
	u.CurrentLevel++
	return PurchaseResult{OK: true, Spent: cost, NewLevel: u.CurrentLevel}
}

// Migrate rebuilds the catalog from current definitions and copies only the saved
// levels across. Unknown saved ids are dropped; missing ones start at 0.
func (c *Catalog) Migrate(saved map[string]engine.Upgrade) {
	next := c.fresh()
	for id, u := range next {
		s, ok := saved[id]
		if !ok {
			continue
		}
		lvl := s.CurrentLevel
		if lvl < 0 {
			lvl = 0
		}
		if lvl > u.MaxLevel {
			lvl = u.MaxLevel
		}
		u.CurrentLevel = lvl
	}
	c.upgrades = next
}

// Levels returns id -> current level.
func (c *Catalog) Levels() map[string]int {
	out := make(map[string]int, len(c.upgrades))
	for id, u := range c.upgrades {
		out[id] = u.CurrentLevel
	}
	return out
}

// Snapshot returns copies of every upgrade keyed by id, as stored in saves.
func (c *Catalog) Snapshot() map[string]engine.Upgrade {
	out := make(map[string]engine.Upgrade, len(c.upgrades))
	for id, u := range c.upgrades {
		out[id] = *u
	}
	return out
}

// Reset drops every level back to 0.
func (c *Catalog) Reset() {
	c.upgrades = c.fresh()
}
