package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidReaderID(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"R1", true},
		{"front-desk.01", true},
		{"esp32:aa:bb", true},
		{"", false},
		{"a/b", false},
		{"r*", false},
		{"reader 1", false},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, IsValidReaderID(tc.in))
		})
	}
}

func TestNormalizeTagUID(t *testing.T) {
	assert.Equal(t, "04A1B2C3", NormalizeTagUID(" 04:a1:b2:c3 "))
	assert.Equal(t, "04A1B2C3", NormalizeTagUID("04 A1 B2 C3"))
	assert.Equal(t, "04A1B2C3", NormalizeTagUID("04-a1-B2-c3"))
	assert.Equal(t, NormalizeTagUID("04-A1-B2"), NormalizeTagUID("04A1B2"))
	assert.Equal(t, "T1", NormalizeTagUID("t1"))
	assert.Equal(t, "", NormalizeTagUID("  "))
}

func TestIsValidTagUID(t *testing.T) {
	assert.True(t, IsValidTagUID("04A1B2C3"))
	assert.False(t, IsValidTagUID(""))
}
