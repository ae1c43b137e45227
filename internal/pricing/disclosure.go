package pricing

import (
	"errors"
	"sort"

	"github.com/google/uuid"

	"vendaflow/internal/model"
)

// Progressive kit disclosure: the seller sees one pricing tier at a time and
// may only advance to a cheaper kit after recording why the customer rejected
// the current one. The last remaining kit can never be rejected. Within a
// kit, the promotional_2 and minimum price points stay hidden until an
// explicit reveal — independent of the rejection mechanism.

var (
	ErrUnknownKit  = errors.New("disclosure: kit does not belong to this product")
	ErrLastKit     = errors.New("disclosure: the last remaining kit cannot be rejected")
	ErrKitRejected = errors.New("disclosure: kit already rejected")
)

// HiddenTiers are the price points withheld until explicitly revealed.
var HiddenTiers = []Tier{TierPromotional2, TierMinimum}

// Disclosure is the reveal-by-rejection state for one lead+product pair.
type Disclosure struct {
	kits     []model.ProductPriceKit // sorted by position
	rejected map[uuid.UUID]bool
	revealed map[uuid.UUID]map[Tier]bool
}

// NewDisclosure builds the state from the product's kits and the lead's
// recorded rejections. Kits are ordered by position.
func NewDisclosure(kits []model.ProductPriceKit, rejections []model.KitRejection) *Disclosure {
	sorted := make([]model.ProductPriceKit, len(kits))
	copy(sorted, kits)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })

	d := &Disclosure{
		kits:     sorted,
		rejected: make(map[uuid.UUID]bool),
		revealed: make(map[uuid.UUID]map[Tier]bool),
	}
	for _, r := range rejections {
		d.rejected[r.KitID] = true
	}
	return d
}

// CurrentKit is the first kit in position order not yet rejected.
// Nil when the product has no kits.
func (d *Disclosure) CurrentKit() *model.ProductPriceKit {
	for i := range d.kits {
		if !d.rejected[d.kits[i].ID] {
			return &d.kits[i]
		}
	}
	return nil
}

// RejectedKitIDs returns the rejected set.
func (d *Disclosure) RejectedKitIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(d.rejected))
	for _, k := range d.kits {
		if d.rejected[k.ID] {
			ids = append(ids, k.ID)
		}
	}
	return ids
}

// RemainingKits counts the kits not yet rejected.
func (d *Disclosure) RemainingKits() int {
	remaining := 0
	for _, k := range d.kits {
		if !d.rejected[k.ID] {
			remaining++
		}
	}
	return remaining
}

// AllKitsRevealed is the terminal condition: every kit but one rejected.
// Further rejection is disallowed; the seller must close on the last tier.
func (d *Disclosure) AllKitsRevealed() bool {
	remaining := 0
	for _, k := range d.kits {
		if !d.rejected[k.ID] {
			remaining++
		}
	}
	return len(d.kits) > 0 && remaining <= 1
}

// Reject marks a kit rejected and advances the current kit. The caller is
// responsible for persisting the KitRejection record.
func (d *Disclosure) Reject(kitID uuid.UUID) error {
	found := false
	for _, k := range d.kits {
		if k.ID == kitID {
			found = true
			break
		}
	}
	if !found {
		return ErrUnknownKit
	}
	if d.rejected[kitID] {
		return ErrKitRejected
	}
	if d.AllKitsRevealed() {
		return ErrLastKit
	}
	d.rejected[kitID] = true
	return nil
}

// RevealTier marks a hidden price point of a kit as shown. Revealing a tier
// that is not hidden is a no-op.
func (d *Disclosure) RevealTier(kitID uuid.UUID, tier Tier) {
	hidden := false
	for _, t := range HiddenTiers {
		if t == tier {
			hidden = true
			break
		}
	}
	if !hidden {
		return
	}
	if d.revealed[kitID] == nil {
		d.revealed[kitID] = make(map[Tier]bool)
	}
	d.revealed[kitID][tier] = true
}

// TierVisible reports whether a price point may be shown for a kit.
// Regular and promotional are always visible; promotional_2 and minimum only
// after an explicit reveal.
func (d *Disclosure) TierVisible(kitID uuid.UUID, tier Tier) bool {
	for _, t := range HiddenTiers {
		if t == tier {
			return d.revealed[kitID][tier]
		}
	}
	return true
}

// RevealedTiers lists the revealed hidden tiers per kit, for session storage.
func (d *Disclosure) RevealedTiers() map[uuid.UUID][]Tier {
	out := make(map[uuid.UUID][]Tier, len(d.revealed))
	for kitID, tiers := range d.revealed {
		for _, t := range HiddenTiers {
			if tiers[t] {
				out[kitID] = append(out[kitID], t)
			}
		}
	}
	return out
}

// RestoreReveals re-applies reveals loaded from session storage.
func (d *Disclosure) RestoreReveals(reveals map[uuid.UUID][]Tier) {
	for kitID, tiers := range reveals {
		for _, t := range tiers {
			d.RevealTier(kitID, t)
		}
	}
}
