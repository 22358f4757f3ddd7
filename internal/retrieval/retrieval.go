// Package retrieval answers FAQ-style questions from a knowledge base.
// Search is served either by an external retrieval service over HTTP or
// by the built-in static index.
package retrieval

import "context"

// Snippet is one knowledge-base hit. Score is in [0, 1]; higher is a
// better match for the query.
type Snippet struct {
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Category string  `json:"category"`
	Score    float64 `json:"score"`
}

type Searcher interface {
	Search(ctx context.Context, query string, topK int) ([]Snippet, error)
}

const DefaultTopK = 3
