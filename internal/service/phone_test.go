package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "5511987654321", NormalizePhone("+55 (11) 98765-4321"))
	assert.Equal(t, "1187654321", NormalizePhone("11 8765-4321"))
	assert.Equal(t, "", NormalizePhone("sem números"))
}

func TestPhoneVariantsCoverAllBrazilianForms(t *testing.T) {
	all := []string{"1187654321", "11987654321", "551187654321", "5511987654321"}

	// Every accepted length expands to the same four variants, raw digits first.
	for _, in := range all {
		got := PhoneVariants(in)
		assert.ElementsMatch(t, all, got, "input %s", in)
		assert.Equal(t, in, got[0], "raw digits must come first for input %s", in)
	}
}

func TestPhoneVariantsNormalizesFormatting(t *testing.T) {
	got := PhoneVariants("+55 (11) 98765-4321")
	assert.Contains(t, got, "11987654321")
	assert.Contains(t, got, "1187654321")
}

func TestPhoneVariantsUnrecognizedLength(t *testing.T) {
	assert.Equal(t, []string{"123"}, PhoneVariants("123"))
	assert.Nil(t, PhoneVariants(""))
	assert.Nil(t, PhoneVariants("---"))
}
