package privacy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"single rune", "王", "王"},
		{"two runes", "李明", "李*"},
		{"three runes", "王某某", "王**"},
		{"four runes", "欧阳小明", "欧**明"},
		{"latin", "Alice", "A***e"},
		{"latin two", "Al", "A*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MaskName(tt.in))
		})
	}
}

func TestMaskNameKeepsLength(t *testing.T) {
	for _, name := range []string{"王小明", "Bob", "Christopher", "张三丰是谁"} {
		assert.Equal(t, len([]rune(name)), len([]rune(MaskName(name))), name)
	}
}

func TestSanitizeContentPhone(t *testing.T) {
	out := SanitizeContent("call me at 555-123-4567 tonight")

	assert.Contains(t, out, PhonePlaceholder)
	assert.NotContains(t, out, "555-123-4567")
}

func TestSanitizeContentEmail(t *testing.T) {
	out := SanitizeContent("他的邮箱 someone.x@example.com 别联系")

	assert.Contains(t, out, EmailPlaceholder)
	assert.NotContains(t, out, "someone.x@example.com")
}

func TestSanitizeContentCard(t *testing.T) {
	for _, card := range []string{"4111 1111 1111 1111", "4111111111111111"} {
		out := SanitizeContent("card " + card + " stolen")
		assert.Contains(t, out, CardPlaceholder, card)
		assert.NotContains(t, out, card)
	}
}

func TestSanitizeContentLeavesPlainText(t *testing.T) {
	in := "CS专业，在某科技公司实习，相识于某相亲APP"
	assert.Equal(t, in, SanitizeContent(in))
}

func TestSanitizeContentIdempotent(t *testing.T) {
	inputs := []string{
		"555-123-4567 and a@b.co and 1234 5678 9012 3456",
		"nothing to see",
		"mixed 555-123-4567555 tail",
		strings.Repeat("x@y.org ", 3),
	}
	for _, in := range inputs {
		once := SanitizeContent(in)
		assert.Equal(t, once, SanitizeContent(once), in)
	}
}
