// Package recall ranks memory journal entries against a free-form question
// by plain substring overlap.
package recall

import (
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/agenthands/carecircle/internal/core/model"
)

const minTokenLen = 3

var punctuation = strings.NewReplacer("?", "", ".", "", ",", "", "!", "")

// Tokenize lowercases the question, drops ?.,! and keeps space-separated
// words longer than three bytes.
func Tokenize(question string) []string {
	cleaned := punctuation.Replace(strings.ToLower(question))
	return lo.Filter(strings.Split(cleaned, " "), func(w string, _ int) bool {
		return len(w) > minTokenLen
	})
}

// MatchByKeyword returns the memories whose text or tags contain at least one
// question token, most text hits first. Tag hits let a memory through the
// filter but do not count towards its rank.
func MatchByKeyword(question string, memories []model.Memory) []model.Memory {
	tokens := Tokenize(question)
	if len(tokens) == 0 {
		return []model.Memory{}
	}

	type scored struct {
		memory model.Memory
		score  int
	}

	var matches []scored
	for _, m := range memories {
		text := strings.ToLower(m.RawText)
		tags := lo.Map(m.Tags, func(t string, _ int) string { return strings.ToLower(t) })

		inText := lo.Count(lo.Map(tokens, func(tok string, _ int) bool {
			return strings.Contains(text, tok)
		}), true)
		inTags := lo.SomeBy(tokens, func(tok string) bool {
			return lo.SomeBy(tags, func(tag string) bool { return strings.Contains(tag, tok) })
		})

		if inText > 0 || inTags {
			matches = append(matches, scored{memory: m, score: inText})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	return lo.Map(matches, func(s scored, _ int) model.Memory { return s.memory })
}

// TopMatches is MatchByKeyword cut to at most n entries.
func TopMatches(question string, memories []model.Memory, n int) []model.Memory {
	matches := MatchByKeyword(question, memories)
	if n >= 0 && len(matches) > n {
		return matches[:n]
	}
	return matches
}
