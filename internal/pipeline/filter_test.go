package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldIgnore(t *testing.T) {
	ignore := []string{".DS_Store", "*.tmp", ".git"}

	tests := []struct {
		path string
		want bool
	}{
		{"photos/2020/a.jpg", false},
		{"photos/.DS_Store", true},
		{"docs/draft.tmp", true},
		{".git/config", true},
		{"project/.git/HEAD", true},
		{"gitignore.txt", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldIgnore(tt.path, ignore))
		})
	}
}

func TestFilter(t *testing.T) {
	in := make(chan string, 4)
	in <- "a.txt"
	in <- "b.tmp"
	in <- "dir/c.txt"
	in <- ".DS_Store"
	close(in)

	var got []string
	for p := range Filter(in, func(s string) string { return s }, []string{"*.tmp", ".DS_Store"}) {
		got = append(got, p)
	}

	assert.Equal(t, []string{"a.txt", "dir/c.txt"}, got)
}
