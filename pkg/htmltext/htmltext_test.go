package htmltext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrip(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"paragraphs", "<p>Explain  3NF.</p><p>Use an example.</p>", "Explain 3NF. Use an example."},
		{"nested markup", `<div><strong>Bold</strong> and <a href="#">a link</a></div>`, "Bold and a link"},
		{"entities", "<p>a &amp; b</p>", "a & b"},
		{"plain text", "no markup here", "no markup here"},
		{"whitespace only", " \n\t ", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Strip(tt.html))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "exact", Truncate("exact", 5))
	assert.Equal(t, "abc...", Truncate("abcdef", 3))
	assert.Equal(t, "héll...", Truncate("héllo wörld", 4))
}
