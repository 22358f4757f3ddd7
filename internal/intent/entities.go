package intent

import (
	"regexp"
	"strings"
)

type Entity struct {
	Type       string  `json:"type"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

const (
	EntityOrderNumber    = "order_number"
	EntityEmail          = "email"
	EntityPhone          = "phone"
	EntityDate           = "date"
	EntityAmount         = "amount"
	EntityTrackingNumber = "tracking_number"
)

var (
	orderNumberPattern    = regexp.MustCompile(`(?i)\bORD[-\s]?\d{4}[-\s]?\d{3,4}\b`)
	orderNumberLoose      = regexp.MustCompile(`(?i)\bORD[-\s]?\d{4,8}\b`)
	emailPattern          = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phonePattern          = regexp.MustCompile(`\b\+?1?[-.\s]?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`)
	datePattern           = regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b|\b\d{4}[/-]\d{1,2}[/-]\d{1,2}\b`)
	amountPattern         = regexp.MustCompile(`\$\d+(?:\.\d{2})?\b|\b\d+(?:\.\d{2})?\s*(?:dollars?|usd|eur|gbp)\b`)
	trackingNumberPattern = regexp.MustCompile(`\b1Z[A-Z0-9]{16}\b|\b9400\d{22}\b`)
)

// contextKeywords boost confidence when the surrounding text mentions the
// entity kind by name.
var contextKeywords = map[string][]string{
	EntityOrderNumber:    {"order", "purchase", "transaction", "ord", "#"},
	EntityEmail:          {"email", "e-mail", "contact", "address"},
	EntityPhone:          {"phone", "mobile", "cell", "number"},
	EntityDate:           {"date", "when", "day", "month", "year"},
	EntityAmount:         {"amount", "price", "cost", "total", "paid", "charge"},
	EntityTrackingNumber: {"tracking", "track", "package", "delivery", "shipping"},
}

type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(query string) []Entity {
	lower := strings.ToLower(query)
	var entities []Entity

	add := func(entityType, value string) {
		value = cleanEntityValue(entityType, value)
		for _, existing := range entities {
			if existing.Type == entityType && existing.Value == value {
				return
			}
		}
		entities = append(entities, Entity{
			Type:       entityType,
			Value:      value,
			Confidence: entityConfidence(entityType, lower),
		})
	}

	strict := orderNumberPattern.FindAllString(query, -1)
	for _, match := range strict {
		add(EntityOrderNumber, match)
	}
	if len(strict) == 0 {
		for _, match := range orderNumberLoose.FindAllString(query, -1) {
			add(EntityOrderNumber, match)
		}
	}
	for _, match := range emailPattern.FindAllString(query, -1) {
		add(EntityEmail, match)
	}
	for _, match := range trackingNumberPattern.FindAllString(query, -1) {
		add(EntityTrackingNumber, match)
	}
	for _, match := range datePattern.FindAllString(query, -1) {
		add(EntityDate, match)
	}
	for _, match := range amountPattern.FindAllString(query, -1) {
		add(EntityAmount, match)
	}
	for _, match := range phonePattern.FindAllString(query, -1) {
		// The loose phone pattern also matches plain digit runs inside
		// order and tracking numbers; require explicit phone context.
		if hasContext(EntityPhone, lower) {
			add(EntityPhone, match)
		}
	}

	return entities
}

// FindOrderNumbers returns the canonicalized order numbers present in text,
// in order of appearance.
func FindOrderNumbers(text string) []string {
	matches := orderNumberPattern.FindAllString(text, -1)
	out := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, match := range matches {
		value := cleanEntityValue(EntityOrderNumber, match)
		if _, dup := seen[value]; dup {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}

// FindEmails returns the email addresses present in text, in order of
// appearance.
func FindEmails(text string) []string {
	return emailPattern.FindAllString(text, -1)
}

func cleanEntityValue(entityType, value string) string {
	value = strings.TrimSpace(value)
	if entityType == EntityOrderNumber {
		value = strings.ToUpper(value)
		value = strings.ReplaceAll(value, " ", "-")
		if !strings.HasPrefix(value, "ORD-") && strings.HasPrefix(value, "ORD") {
			value = "ORD-" + value[len("ORD"):]
		}
	}
	return value
}

func entityConfidence(entityType, lowerQuery string) float64 {
	if hasContext(entityType, lowerQuery) {
		return 0.9
	}
	return 0.6
}

func hasContext(entityType, lowerQuery string) bool {
	for _, keyword := range contextKeywords[entityType] {
		if strings.Contains(lowerQuery, keyword) {
			return true
		}
	}
	return false
}
