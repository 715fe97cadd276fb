package messaging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeE164(t *testing.T) {
	assert.Equal(t, "+15551234567", NormalizeE164("(555) 123-4567"))
	assert.Equal(t, "+15551234567", NormalizeE164("+1 555 123 4567"))
	assert.Equal(t, "+447700900123", NormalizeE164("+44 7700 900123"))
	assert.Equal(t, "", NormalizeE164("  "))
}

func TestLookupVariants(t *testing.T) {
	assert.Equal(t,
		[]string{"5551234567", "+15551234567", "15551234567"},
		LookupVariants("+15551234567"))
	assert.Equal(t,
		[]string{"5551234567", "+15551234567", "15551234567", "(555) 123-4567"},
		LookupVariants("(555) 123-4567"))
	assert.Nil(t, LookupVariants("unknown"))
}
