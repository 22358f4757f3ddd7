package intent

import (
	"context"
	"regexp"
	"strings"
)

type Intent string

const (
	IntentFAQ               Intent = "faq"
	IntentOrderInquiry      Intent = "order_inquiry"
	IntentOrderStatus       Intent = "order_status"
	IntentOrderReturn       Intent = "order_return"
	IntentOrderRefund       Intent = "order_refund"
	IntentComplaint         Intent = "complaint"
	IntentAccountIssue      Intent = "account_issue"
	IntentProductInfo       Intent = "product_info"
	IntentTechnicalSupport  Intent = "technical_support"
	IntentBillingPayment    Intent = "billing_payment"
	IntentShippingDelivery  Intent = "shipping_delivery"
	IntentGeneralChat       Intent = "general_chat"
	IntentEscalationRequest Intent = "escalation_request"
	IntentTicketRequest     Intent = "ticket_request"
)

type Result struct {
	Intent     Intent
	Confidence float64
}

// KeywordClassifier is a rule-based classifier: each intent has a pattern
// list, intents are checked in a fixed priority order, and confidence is
// the fraction of patterns that matched. More urgent intents sit earlier
// in the order so dissatisfaction is never absorbed into FAQ lookup.
type KeywordClassifier struct {
	patterns map[Intent][]*regexp.Regexp
	priority []Intent
}

func NewKeywordClassifier() *KeywordClassifier {
	raw := map[Intent][]string{
		IntentFAQ: {
			`\b(what|how|when|where|why|can|do|does|is|are)\b.*\?`,
			`\b(tell me|explain|help|guide|info|information)\b`,
			`\b(about|regarding|concerning)\b`,
			`\b(return policy|refund policy|shipping policy|warranty)\b`,
			`\b(policy|policies|terms|conditions)\b`,
		},
		IntentOrderInquiry: {
			`\b(order|purchase|buy|transaction)\b.*\b(number|#|id)\b`,
			`\b(my order|order details|order info)\b`,
			`\b(order history|past orders|previous purchases)\b`,
			`\bORD-\d+|\d{4}-\d{3}\b`,
		},
		IntentOrderStatus: {
			`\b(order status|status.*order|where.*order|tracking|track)\b`,
			`\b(shipped|delivered|arrived|received)\b.*\b(order|package)\b`,
			`\b(when.*order|order.*arrive|delivery.*time)\b`,
			`\b(what.*status|how.*order|where.*package)\b`,
		},
		IntentOrderReturn: {
			`\b(return|returning|send back|take back)\b.*\b(order|item|product)\b`,
			`\b(i want to|can i|how do i)\b.*\b(return|send back)\b`,
			`\b(return label|return shipping)\b`,
		},
		IntentOrderRefund: {
			`\b(refund|money back|reimbursement)\b`,
			`\b(refund status|refund process|when.*refund)\b`,
			`\b(credit|chargeback|reversal)\b`,
		},
		IntentComplaint: {
			`\b(angry|frustrated|disappointed|unhappy|terrible|awful|horrible)\b`,
			`\b(complaint|complain|issue|problem|trouble|wrong|mistake|error)\b`,
			`\b(not working|doesn't work|won't work)\b`,
			`\b(broken|damaged|defective|defected|faulty|bad quality)\b`,
			`\b(received wrong|wrong item|incorrect item|wrong product)\b`,
			`\b(poor|bad|unsatisfied|dissatisfied)\b`,
			`\b(waste|useless|garbage|junk)\b`,
		},
		IntentAccountIssue: {
			`\b(account|login|password|sign in|sign up|register)\b`,
			`\b(profile|settings|preferences|personal info)\b`,
		},
		IntentProductInfo: {
			`\b(product|item|inventory|stock|available|in stock)\b`,
			`\b(details|specs|specifications|features|description)\b`,
			`\b(size|color|model|version|type)\b`,
		},
		IntentTechnicalSupport: {
			`\b(technical|tech support)\b`,
			`\b(bug|glitch|crash|freeze)\b`,
			`\b(website|app|application|system|platform)\b.*\b(error|down|broken)\b`,
		},
		IntentBillingPayment: {
			`\b(payment|pay|billing|bill|charge|fee|cost|price)\b`,
			`\b(card|credit|debit|paypal|apple pay|google pay)\b`,
			`\b(invoice|receipt|statement|balance)\b`,
		},
		IntentShippingDelivery: {
			`\b(shipping|delivery|ship|deliver|courier|carrier)\b`,
			`\b(address|location|destination|international|overseas)\b`,
			`\b(package|parcel|box|mail)\b`,
		},
		IntentEscalationRequest: {
			`\b(speak|talk|contact)\b.*\b(manager|supervisor|human|person)\b`,
			`\b(manager|supervisor|human)\b`,
			`\b(escalate|transfer|higher|authority|representative)\b`,
			`\b(not helpful|need help|urgent|emergency)\b`,
		},
		IntentTicketRequest: {
			`\b(create|raise|open|new)\b.*\bticket\b`,
			`\b(support|issue|help)\b.*\bticket\b`,
			`\b(report.*issue|file.*complaint|lodge.*complaint)\b`,
		},
		IntentGeneralChat: {
			`\b(hello|hi|hey|greetings|thanks|thank you)\b`,
			`\b(bye|goodbye|see you|farewell)\b`,
			`\b(how are you)\b`,
		},
	}

	compiled := make(map[Intent][]*regexp.Regexp, len(raw))
	for it, exprs := range raw {
		patterns := make([]*regexp.Regexp, 0, len(exprs))
		for _, expr := range exprs {
			patterns = append(patterns, regexp.MustCompile(`(?i)`+expr))
		}
		compiled[it] = patterns
	}

	return &KeywordClassifier{
		patterns: compiled,
		// Urgency first: ticket/escalation signals beat order intents,
		// order intents beat FAQ. Specific order intents come before the
		// generic inquiry so "return my order" is not swallowed by it.
		priority: []Intent{
			IntentTicketRequest,
			IntentEscalationRequest,
			IntentOrderReturn,
			IntentOrderRefund,
			IntentOrderStatus,
			IntentOrderInquiry,
			IntentComplaint,
			IntentAccountIssue,
			IntentTechnicalSupport,
			IntentBillingPayment,
			IntentShippingDelivery,
			IntentProductInfo,
			IntentFAQ,
			IntentGeneralChat,
		},
	}
}

const defaultConfidence = 0.3

func (c *KeywordClassifier) Classify(_ context.Context, utterance string, _ []string) (Result, error) {
	query := strings.ToLower(strings.TrimSpace(utterance))

	for _, it := range c.priority {
		patterns := c.patterns[it]
		matches := 0
		for _, pattern := range patterns {
			if pattern.MatchString(query) {
				matches++
			}
		}
		if matches > 0 {
			confidence := float64(matches) / float64(len(patterns))
			if confidence > 1.0 {
				confidence = 1.0
			}
			return Result{Intent: it, Confidence: confidence}, nil
		}
	}

	return Result{Intent: IntentFAQ, Confidence: defaultConfidence}, nil
}

// IsOrderIntent reports whether the intent routes to the order-query agent.
func IsOrderIntent(it Intent) bool {
	switch it {
	case IntentOrderInquiry, IntentOrderStatus, IntentOrderReturn, IntentOrderRefund:
		return true
	default:
		return false
	}
}

// IsEscalationIntent reports whether the intent routes to the escalation agent.
func IsEscalationIntent(it Intent) bool {
	switch it {
	case IntentComplaint, IntentEscalationRequest, IntentTicketRequest:
		return true
	default:
		return false
	}
}
