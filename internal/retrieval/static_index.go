package retrieval

import (
	"context"
	"regexp"
	"sort"
	"strings"
)

// StaticIndex is a keyword-overlap index over a fixed FAQ corpus. It is
// the fallback searcher when no external retrieval service is configured,
// and it keeps tests hermetic.
type StaticIndex struct {
	entries []indexEntry
}

type indexEntry struct {
	snippet Snippet
	tokens  map[string]struct{}
}

var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "can": {}, "do": {},
	"does": {}, "for": {}, "how": {}, "i": {}, "in": {}, "is": {},
	"it": {}, "my": {}, "of": {}, "on": {}, "or": {}, "the": {},
	"to": {}, "what": {}, "when": {}, "where": {}, "which": {},
	"who": {}, "why": {}, "will": {}, "with": {}, "you": {},
	"your": {},
}

func NewStaticIndex() *StaticIndex {
	return NewStaticIndexWith(builtinFAQs)
}

func NewStaticIndexWith(faqs []FAQ) *StaticIndex {
	entries := make([]indexEntry, 0, len(faqs))
	for _, faq := range faqs {
		entries = append(entries, indexEntry{
			snippet: Snippet{
				Question: faq.Question,
				Answer:   faq.Answer,
				Category: faq.Category,
			},
			tokens: tokenize(faq.Question + " " + faq.Answer),
		})
	}
	return &StaticIndex{entries: entries}
}

func (idx *StaticIndex) Search(_ context.Context, query string, topK int) ([]Snippet, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	queryTokens := tokenize(query)
	if len(queryTokens) == 0 {
		return []Snippet{}, nil
	}

	scored := make([]Snippet, 0, len(idx.entries))
	for _, entry := range idx.entries {
		matched := 0
		for token := range queryTokens {
			if _, ok := entry.tokens[token]; ok {
				matched++
			}
		}
		if matched == 0 {
			continue
		}
		snippet := entry.snippet
		snippet.Score = float64(matched) / float64(len(queryTokens))
		scored = append(scored, snippet)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored, nil
}

// Categories lists the distinct FAQ categories in the index, sorted.
func (idx *StaticIndex) Categories() []string {
	seen := make(map[string]struct{})
	for _, entry := range idx.entries {
		if entry.snippet.Category != "" {
			seen[entry.snippet.Category] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for category := range seen {
		out = append(out, category)
	}
	sort.Strings(out)
	return out
}

func tokenize(text string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, token := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		if _, skip := stopwords[token]; skip {
			continue
		}
		tokens[token] = struct{}{}
	}
	return tokens
}
