package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveDescriptionKnownCategory(t *testing.T) {
	desc := DeriveDescription("مطعم الشام", "Restaurant")
	assert.True(t, strings.HasPrefix(desc, "مطعم الشام - "))
	assert.Contains(t, desc, "المأكولات")
}

func TestDeriveDescriptionFallbackTemplate(t *testing.T) {
	desc := DeriveDescription("Acme", "خدمات غريبة")
	assert.Equal(t, "Acme - شركة Acme متخصصة في خدمات غريبة", desc)
}

func TestDeriveServices(t *testing.T) {
	services := DeriveServices("pharmacy")
	assert.NotEmpty(t, services)
	assert.Contains(t, services, "أدوية")

	assert.Nil(t, DeriveServices("unheard of"))
}
