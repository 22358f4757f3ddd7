package agents

import (
	"context"
	"fmt"
	"log"
	"strings"

	"supportstack.local/projects/support-gateway/internal/retrieval"
	"supportstack.local/projects/support-gateway/internal/session"
)

const defaultScoreThreshold = 0.3

// FAQAgent answers general questions from the knowledge base.
type FAQAgent struct {
	logger    *log.Logger
	searcher  retrieval.Searcher
	threshold float64
}

func NewFAQAgent(logger *log.Logger, searcher retrieval.Searcher, threshold float64) *FAQAgent {
	if threshold <= 0 {
		threshold = defaultScoreThreshold
	}
	return &FAQAgent{logger: logger, searcher: searcher, threshold: threshold}
}

func (a *FAQAgent) ID() session.AgentID {
	return session.AgentFAQ
}

func (a *FAQAgent) Handle(ctx context.Context, turn Turn) (Response, error) {
	snippets, err := a.searcher.Search(ctx, turn.Utterance, retrieval.DefaultTopK)
	if err != nil {
		a.logger.Printf("faq search failed session_id=%s err=%v", turn.Session.SessionID, err)
		return Response{}, fmt.Errorf("%w: faq search: %v", ErrCollaboratorUnavailable, err)
	}

	if len(snippets) == 0 || snippets[0].Score < a.threshold {
		return Response{
			Text: "I couldn't find a good answer for that in our knowledge base. " +
				"Would you like me to create a support ticket so our team can help you directly?",
			ShouldCreateTicket: true,
			Sources:            snippets,
		}, nil
	}

	var b strings.Builder
	b.WriteString(snippets[0].Answer)
	if len(snippets) > 1 && snippets[1].Score >= a.threshold {
		b.WriteString("\n\nRelated: ")
		b.WriteString(snippets[1].Question)
	}

	return Response{
		Text:    b.String(),
		Sources: snippets,
	}, nil
}
