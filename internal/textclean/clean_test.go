package textclean

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClean_Empty(t *testing.T) {
	assert.Equal(t, "", Clean(""))
	assert.Equal(t, "", Clean("   \n\t\n"))
}

func TestClean_Rules(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "carriage returns and tabs",
			in:   "The\tmitochondria   is the\r powerhouse of the cell.\r\n",
			want: "The mitochondria is the powerhouse of the cell.",
		},
		{
			name: "page numbers removed",
			in:   "Photosynthesis converts light into chemical energy.\n  12  \nChlorophyll absorbs mostly blue and red light.",
			want: "Photosynthesis converts light into chemical energy.\nChlorophyll absorbs mostly blue and red light.",
		},
		{
			name: "short lines removed",
			in:   "Chapter 3\nThe French Revolution began in the year 1789.\nSummary",
			want: "The French Revolution began in the year 1789.",
		},
		{
			name: "line of exactly 25 chars is noise",
			in:   strings.Repeat("a", 25) + "\n" + strings.Repeat("b", 26),
			want: strings.Repeat("b", 26),
		},
		{
			name: "duplicates keep first occurrence",
			in:   "Université Mohammed V - Faculté des Sciences\nLes enzymes accélèrent les réactions chimiques.\n  Université Mohammed V - Faculté des Sciences  ",
			want: "Université Mohammed V - Faculté des Sciences\nLes enzymes accélèrent les réactions chimiques.",
		},
		{
			name: "arabic text counted in characters",
			in:   "الخلية هي الوحدة الأساسية للحياة في الكائنات\nقصير",
			want: "الخلية هي الوحدة الأساسية للحياة في الكائنات",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}
}

func TestClean_TruncatesToMaxChars(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 2000; i++ {
		fmt.Fprintf(&b, "Line number %05d of a very long lesson body.\n", i)
	}

	out := Clean(b.String())
	require.NotEmpty(t, out)
	assert.LessOrEqual(t, utf8.RuneCountInString(out), MaxChars)
	assert.True(t, strings.HasPrefix(out, "Line number 00000"))
}

func TestClean_TruncationDropsFragmentLine(t *testing.T) {
	// 84-char lines plus newline: the cut at 12000 lands 15 characters
	// into line 141.
	var lines []string
	for i := 0; i < 150; i++ {
		lines = append(lines, fmt.Sprintf("%03d%s", i, strings.Repeat("x", 81)))
	}
	out := Clean(strings.Join(lines, "\n"))
	assert.True(t, strings.HasSuffix(out, "140"+strings.Repeat("x", 81)))

	for _, l := range strings.Split(out, "\n") {
		assert.Greater(t, utf8.RuneCountInString(strings.TrimSpace(l)), MinLineChars, "fragment survived: %q", l)
	}
}

func TestClean_Properties(t *testing.T) {
	inputs := []string{
		"",
		"1\n2\n3",
		strings.Repeat("same line repeated over and over again\n", 50),
		strings.Repeat("word ", 5000),
		"  leading and trailing whitespace around this sentence  \n\n\n\n\nanother sufficiently long sentence here",
	}

	for i, in := range inputs {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			out := Clean(in)
			assert.LessOrEqual(t, utf8.RuneCountInString(out), MaxChars)
			if out == "" {
				return
			}
			seen := map[string]bool{}
			for _, line := range strings.Split(out, "\n") {
				key := strings.TrimSpace(line)
				assert.Greater(t, utf8.RuneCountInString(key), MinLineChars)
				assert.False(t, seen[key], "duplicate line %q", key)
				seen[key] = true
			}
		})
	}
}
