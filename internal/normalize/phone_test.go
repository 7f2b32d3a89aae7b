package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhoneSyrianMobile(t *testing.T) {
	assert.Equal(t, "+963912345678", NormalizePhone("0912345678"))
	assert.Equal(t, "+963912345678", NormalizePhone("0912 345 678"))
	assert.Equal(t, "+963912345678", NormalizePhone("(091) 234-5678"))
}

func TestNormalizePhoneInternationalPrefixes(t *testing.T) {
	assert.Equal(t, "+963112345678", NormalizePhone("00963112345678"))
	assert.Equal(t, "+963112345678", NormalizePhone("0963112345678"))
	assert.Equal(t, "+963112345678", NormalizePhone("963112345678"))
}

func TestNormalizePhoneKeepsExistingPlus(t *testing.T) {
	assert.Equal(t, "+963912345678", NormalizePhone("+963912345678"))
	assert.Equal(t, "+971501234567", NormalizePhone("+971 50 123 4567"))
}

func TestNormalizePhoneJordanianMobile(t *testing.T) {
	assert.Equal(t, "+962791234567", NormalizePhone("0791234567"))
}

func TestNormalizePhoneSaudiAndUAE(t *testing.T) {
	// 050 is a UAE mobile prefix; other 05 numbers are Saudi.
	assert.Equal(t, "+971501234567", NormalizePhone("0501234567"))
	assert.Equal(t, "+966531234567", NormalizePhone("0531234567"))
}

func TestNormalizePhoneSyrianLandline(t *testing.T) {
	// Seven local digits get the Damascus area code.
	assert.Equal(t, "+963112212345", NormalizePhone("2212345"))
	assert.Equal(t, "+963112345678", NormalizePhone("0112345678"))
}

func TestNormalizePhoneTotalOnGarbage(t *testing.T) {
	// Unrecognizable input comes back unchanged; validation decides later.
	assert.Equal(t, "", NormalizePhone(""))
	assert.Equal(t, "abc", NormalizePhone("abc"))
	assert.Equal(t, "12345", NormalizePhone("12345"))
}
