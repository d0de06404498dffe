package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestParse_Empty(t *testing.T) {
	result := Parse("")
	assert.Equal(t, "", result.Command)
	assert.Nil(t, result.Args)
}

func TestParse_SingleWord(t *testing.T) {
	result := Parse("explore")
	assert.Equal(t, "explore", result.Command)
	assert.Nil(t, result.Args)
}

func TestParse_Lowercase(t *testing.T) {
	result := Parse("ATTACK")
	assert.Equal(t, "attack", result.Command)
}

func TestParse_WithArgs(t *testing.T) {
	result := Parse("drop 12 46")
	assert.Equal(t, "drop", result.Command)
	assert.Equal(t, []string{"12", "46"}, result.Args)
}

func TestParse_ExtraWhitespace(t *testing.T) {
	result := Parse("  buy   2   46:equip  ")
	assert.Equal(t, "buy", result.Command)
	assert.Equal(t, []string{"2", "46:equip"}, result.Args)
}

func TestParse_Comment(t *testing.T) {
	result := Parse("explore all # until a beast shows up")
	assert.Equal(t, "explore", result.Command)
	assert.Equal(t, []string{"all"}, result.Args)

	assert.Equal(t, ParseResult{}, Parse("# just a note"))
}

func TestPropertyParseAlwaysLowercasesCommand(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		word := rapid.StringMatching(`[A-Za-z]{1,20}`).Draw(t, "word")
		result := Parse(word)
		for _, c := range result.Command {
			if c >= 'A' && c <= 'Z' {
				t.Fatalf("command %q contains uppercase char in Parse result %q", word, result.Command)
			}
		}
	})
}

func TestPropertyParseNonEmptyInputHasCommand(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		word := rapid.StringMatching(`[a-z]{1,10}`).Draw(t, "word")
		result := Parse(word)
		if result.Command == "" {
			t.Fatalf("non-empty input %q produced empty command", word)
		}
	})
}
