package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendaflow/internal/model"
)

func disclosureKits() []model.ProductPriceKit {
	return []model.ProductPriceKit{
		{ID: uuid.New(), Quantity: 12, Position: 0, RegularPriceCents: i64(30000)},
		{ID: uuid.New(), Quantity: 6, Position: 1, RegularPriceCents: i64(18000)},
		{ID: uuid.New(), Quantity: 3, Position: 2, RegularPriceCents: i64(10000)},
	}
}

func TestCurrentKitIsFirstNotRejected(t *testing.T) {
	kits := disclosureKits()
	d := NewDisclosure(kits, nil)

	require.NotNil(t, d.CurrentKit())
	assert.Equal(t, kits[0].ID, d.CurrentKit().ID)

	require.NoError(t, d.Reject(kits[0].ID))
	assert.Equal(t, kits[1].ID, d.CurrentKit().ID,
		"rejection must advance to the lowest-position kit not in the rejected set")
}

func TestRejectingSecondToLastRevealsAll(t *testing.T) {
	kits := disclosureKits()
	d := NewDisclosure(kits, nil)

	require.NoError(t, d.Reject(kits[0].ID))
	assert.False(t, d.AllKitsRevealed())

	require.NoError(t, d.Reject(kits[1].ID))
	assert.True(t, d.AllKitsRevealed())

	// The last remaining kit can never be rejected.
	err := d.Reject(kits[2].ID)
	assert.ErrorIs(t, err, ErrLastKit)
	assert.Equal(t, kits[2].ID, d.CurrentKit().ID)
}

func TestRejectValidations(t *testing.T) {
	kits := disclosureKits()
	d := NewDisclosure(kits, nil)

	assert.ErrorIs(t, d.Reject(uuid.New()), ErrUnknownKit)

	require.NoError(t, d.Reject(kits[0].ID))
	assert.ErrorIs(t, d.Reject(kits[0].ID), ErrKitRejected)
}

func TestRebuildFromPersistedRejections(t *testing.T) {
	kits := disclosureKits()
	rejections := []model.KitRejection{{KitID: kits[0].ID}, {KitID: kits[1].ID}}

	d := NewDisclosure(kits, rejections)
	assert.True(t, d.AllKitsRevealed())
	assert.Equal(t, kits[2].ID, d.CurrentKit().ID)
	assert.Len(t, d.RejectedKitIDs(), 2)
}

func TestHiddenTiersNeedExplicitReveal(t *testing.T) {
	kits := disclosureKits()
	d := NewDisclosure(kits, nil)
	kitID := kits[0].ID

	assert.True(t, d.TierVisible(kitID, TierRegular))
	assert.True(t, d.TierVisible(kitID, TierPromotional))
	assert.False(t, d.TierVisible(kitID, TierPromotional2))
	assert.False(t, d.TierVisible(kitID, TierMinimum))

	d.RevealTier(kitID, TierMinimum)
	assert.True(t, d.TierVisible(kitID, TierMinimum))
	assert.False(t, d.TierVisible(kitID, TierPromotional2),
		"reveals are independent per tier")

	// Reveal state round-trips through session storage.
	d2 := NewDisclosure(kits, nil)
	d2.RestoreReveals(d.RevealedTiers())
	assert.True(t, d2.TierVisible(kitID, TierMinimum))
}
