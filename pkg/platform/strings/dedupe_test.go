package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{name: "nil input", input: nil, want: nil},
		{name: "only blanks", input: []string{"", "  "}, want: nil},
		{name: "trims and keeps order", input: []string{" b ", "a"}, want: []string{"b", "a"}},
		{name: "drops repeats after trimming", input: []string{"core.*", " core.* ", "eventstream"}, want: []string{"core.*", "eventstream"}},
		{name: "case sensitive", input: []string{"Core", "core"}, want: []string{"Core", "core"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DedupeAndTrim(tt.input))
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"localhost:9092", "broker:9092"}, SplitList("localhost:9092, broker:9092,,localhost:9092"))
	assert.Nil(t, SplitList(""))
	assert.Nil(t, SplitList(" , "))
}
