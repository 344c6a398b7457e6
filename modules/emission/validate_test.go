package emission

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLettersOnly(t *testing.T) {
	cases := []struct {
		name     string
		text     string
		alphabet Alphabet
		want     bool
	}{
		{"latin word", "Solaris", CyrillicAndLatin, true},
		{"cyrillic word", "Крона", CyrillicAndLatin, true},
		{"mixed with space", "Новый Dollar", CyrillicAndLatin, true},
		{"digit inside", "Dollar5", CyrillicAndLatin, false},
		{"punctuation", "So-laris", CyrillicAndLatin, false},
		{"empty", "", CyrillicAndLatin, false},
		{"latin only accepts latin", "SOL", LatinOnly, true},
		{"latin only rejects cyrillic", "СОЛ", LatinOnly, false},
		{"latin only rejects digit", "SO1", LatinOnly, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, LettersOnly(tc.text, tc.alphabet))
		})
	}
}

func TestIsInteger(t *testing.T) {
	assert.True(t, IsInteger("100000"))
	assert.True(t, IsInteger("0"))
	assert.False(t, IsInteger("100 000"))
	assert.False(t, IsInteger("-5"))
	assert.False(t, IsInteger("1e5"))
	assert.False(t, IsInteger("100.5"))
	assert.False(t, IsInteger(""))
}

func TestIsDecimal(t *testing.T) {
	assert.True(t, IsDecimal("1000"))
	assert.True(t, IsDecimal("1000.55"))
	assert.True(t, IsDecimal("999.999"))
	assert.False(t, IsDecimal("1000,55"))
	assert.False(t, IsDecimal(".5"))
	assert.False(t, IsDecimal("1000."))
	assert.False(t, IsDecimal("-1000"))
	assert.False(t, IsDecimal(""))
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "Solaris", normalizeName("  sOLaris "))
	assert.Equal(t, "Imperial crown", normalizeName("Imperial CROWN"))
	assert.Equal(t, "Крона", normalizeName("крона"))
	assert.Equal(t, "", normalizeName("   "))
}
