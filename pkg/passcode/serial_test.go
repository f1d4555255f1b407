package passcode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/unitpass/passbot/pkg/passcode"
)

func TestNormalizeSerial_Accepts(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1234AB5678", "1234AB5678"},
		{"1234ab5678", "1234AB5678"}, // case-insensitive, normalized up
		{"0000AA9999", "0000AA9999"},
		{"1234АБ5678", "1234АБ5678"}, // Cyrillic pair
		{"1234аб5678", "1234АБ5678"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := passcode.NormalizeSerial(tc.in)
			assert.True(t, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNormalizeSerial_Rejects(t *testing.T) {
	for _, in := range []string{
		"123AB5678",   // wrong digit count
		"1234ABC567",  // wrong letter count
		"1234AB567",   // short tail
		"1234AB56789", // long tail
		"12345678",    // no letters
		"ABCD125678",  // letters in digit slots
		"1234A55678",  // digit in letter slot
		" 1234AB5678", // leading whitespace is the caller's job
		"",
	} {
		t.Run(in, func(t *testing.T) {
			_, ok := passcode.NormalizeSerial(in)
			assert.False(t, ok)
		})
	}
}
