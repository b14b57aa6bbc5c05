package recall

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agenthands/carecircle/internal/core/model"
)

func sampleMemories() []model.Memory {
	return []model.Memory{
		{ID: "m1", RawText: "Went to the lake with grandson Tommy", Tags: []string{"family"}},
		{ID: "m2", RawText: "Took medication at noon", Tags: []string{"health"}},
	}
}

func ids(ms []model.Memory) []string {
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.ID)
	}
	return out
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"went", "lake"}, Tokenize("Who went to the lake?"))
	assert.Equal(t, []string{"what", "weather"}, Tokenize("What is the weather?"))
	assert.Empty(t, Tokenize("Who? Me!"))
	assert.Equal(t, []string{"tommy", "visit"}, Tokenize("  Tommy,  visit!  "))
}

func TestMatchByKeyword_Example(t *testing.T) {
	got := MatchByKeyword("Who went to the lake?", sampleMemories())
	assert.Equal(t, []string{"m1"}, ids(got))
}

func TestMatchByKeyword_NoMatch(t *testing.T) {
	got := MatchByKeyword("What is the weather?", sampleMemories())
	assert.Empty(t, got)
}

func TestMatchByKeyword_TagsFilterButDoNotScore(t *testing.T) {
	memories := []model.Memory{
		{ID: "tag-only", RawText: "A sunny afternoon", Tags: []string{"Family", "garden"}},
		{ID: "one-hit", RawText: "Family lunch on Sunday"},
		{ID: "two-hits", RawText: "Family dinner with the whole family"},
		{ID: "none", RawText: "Morning walk", Tags: []string{"exercise"}},
	}

	got := MatchByKeyword("family dinner", memories)

	// tag-only scores zero, so it sorts last even though it passed the filter.
	assert.Equal(t, []string{"two-hits", "one-hit", "tag-only"}, ids(got))
}

func TestMatchByKeyword_RanksByTextHits(t *testing.T) {
	memories := []model.Memory{
		{ID: "a", RawText: "Tommy called"},
		{ID: "b", RawText: "Tommy came to the lake for a picnic"},
		{ID: "c", RawText: "A picnic by the lake"},
	}

	got := MatchByKeyword("Tommy lake picnic", memories)

	assert.Equal(t, []string{"b", "c", "a"}, ids(got))
}

func TestMatchByKeyword_StableForTies(t *testing.T) {
	memories := []model.Memory{
		{ID: "first", RawText: "garden roses"},
		{ID: "second", RawText: "garden tulips"},
		{ID: "third", RawText: "garden lilies"},
	}

	got := MatchByKeyword("the garden", memories)

	assert.Equal(t, []string{"first", "second", "third"}, ids(got))
}

func TestMatchByKeyword_SubstringMatches(t *testing.T) {
	memories := []model.Memory{{ID: "m", RawText: "Grandchildren visited"}}

	got := MatchByKeyword("child", memories)

	assert.Equal(t, []string{"m"}, ids(got), "no stemming, plain substring")
}

func TestTopMatches(t *testing.T) {
	memories := []model.Memory{
		{ID: "1", RawText: "lake"},
		{ID: "2", RawText: "lake"},
		{ID: "3", RawText: "lake"},
		{ID: "4", RawText: "lake"},
	}

	assert.Len(t, TopMatches("lake", memories, 3), 3)
	assert.Len(t, TopMatches("lake", memories[:2], 3), 2)
}
