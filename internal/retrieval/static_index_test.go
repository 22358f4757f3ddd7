package retrieval

import (
	"context"
	"testing"
)

func TestStaticIndexFindsShippingAnswer(t *testing.T) {
	idx := NewStaticIndex()

	snippets, err := idx.Search(context.Background(), "how long does shipping take", 3)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(snippets) == 0 {
		t.Fatalf("expected at least one snippet")
	}
	if snippets[0].Category != "shipping" {
		t.Fatalf("expected shipping category, got %q", snippets[0].Category)
	}
	if snippets[0].Score <= 0 {
		t.Fatalf("expected positive score, got %f", snippets[0].Score)
	}
}

func TestStaticIndexRanksByOverlap(t *testing.T) {
	idx := NewStaticIndexWith([]FAQ{
		{Category: "returns", Question: "What is your return policy?", Answer: "Returns within 30 days."},
		{Category: "shipping", Question: "Do you ship internationally?", Answer: "Yes, worldwide."},
	})

	snippets, err := idx.Search(context.Background(), "tell me about the return policy", 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(snippets) == 0 {
		t.Fatalf("expected snippets")
	}
	if snippets[0].Category != "returns" {
		t.Fatalf("expected returns entry first, got %q", snippets[0].Category)
	}
}

func TestStaticIndexNoMatch(t *testing.T) {
	idx := NewStaticIndex()

	snippets, err := idx.Search(context.Background(), "zzqx qqzw", 3)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(snippets) != 0 {
		t.Fatalf("expected no snippets, got %d", len(snippets))
	}
}

func TestStaticIndexHonorsTopK(t *testing.T) {
	idx := NewStaticIndex()

	snippets, err := idx.Search(context.Background(), "order shipping refund account", 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(snippets) > 2 {
		t.Fatalf("expected at most 2 snippets, got %d", len(snippets))
	}
}

func TestStaticIndexCategories(t *testing.T) {
	idx := NewStaticIndexWith([]FAQ{
		{Category: "shipping", Question: "q1", Answer: "a1"},
		{Category: "returns", Question: "q2", Answer: "a2"},
		{Category: "shipping", Question: "q3", Answer: "a3"},
	})

	categories := idx.Categories()
	if len(categories) != 2 {
		t.Fatalf("expected 2 categories, got %v", categories)
	}
	if categories[0] != "returns" || categories[1] != "shipping" {
		t.Fatalf("expected sorted categories, got %v", categories)
	}
}
