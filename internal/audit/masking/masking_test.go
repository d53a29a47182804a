package masking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "", MaskSecret("  "))
	assert.Equal(t, "****", MaskSecret("abcd"))
	assert.Equal(t, "****.com", MaskSecret("asha@example.com"))
	assert.Equal(t, "key_****5678", MaskSecret("key_12345678"))
}

func TestMaskMetadataOnlyTouchesContacts(t *testing.T) {
	out := MaskMetadata(map[string]any{
		"invoice_number": "INV-202603-000001",
		"customer_email": "asha@example.com",
		"customer_phone": "+919000012345",
		"grand_total":    int64(1200),
		"company":        "Storefront",
		"":               "dropped",
		"shipping":       map[string]any{"phone": "+919000012345", "city": "Pune"},
	})

	assert.Equal(t, "INV-202603-000001", out["invoice_number"])
	assert.Equal(t, "****.com", out["customer_email"])
	assert.Equal(t, "****2345", out["customer_phone"])
	assert.Equal(t, int64(1200), out["grand_total"])
	assert.Equal(t, "Storefront", out["company"])
	assert.NotContains(t, out, "")
	assert.Equal(t, map[string]any{"phone": "****2345", "city": "Pune"}, out["shipping"])
	assert.Nil(t, MaskMetadata(nil))
}
