// Package assist defines the request/response model for conversational
// storefront assistance.
package assist

// MaxRecommendations caps every recommendation list the engine produces.
const MaxRecommendations = 6

// Intent represents the classified intent of a shopper message.
type Intent string

const (
	IntentSearch       Intent = "search"
	IntentComparison   Intent = "comparison"
	IntentPrice        Intent = "price"
	IntentShipping     Intent = "shipping"
	IntentReturns      Intent = "returns"
	IntentSize         Intent = "size"
	IntentSupport      Intent = "support"
	IntentGreeting     Intent = "greeting"
	IntentThanks       Intent = "thanks"
	IntentAvailability Intent = "availability"
	IntentOther        Intent = "other"
)

// MessageType tags the kind of response composed for the shopper.
type MessageType string

const (
	MessageTypeText           MessageType = "text"
	MessageTypeRecommendation MessageType = "product_recommendation"
	MessageTypePolicy         MessageType = "policy"
	MessageTypeSupport        MessageType = "support"
)

// NormalizeMessageType maps arbitrary input to a known message type.
func NormalizeMessageType(s string) MessageType {
	switch MessageType(s) {
	case MessageTypeText, MessageTypeRecommendation, MessageTypePolicy, MessageTypeSupport:
		return MessageType(s)
	default:
		return MessageTypeText
	}
}

// Sentiment represents the detected sentiment of a shopper message.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// NormalizeSentiment maps arbitrary input to a known sentiment.
func NormalizeSentiment(s string) Sentiment {
	switch Sentiment(s) {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return Sentiment(s)
	default:
		return SentimentNeutral
	}
}

// Product is a catalog item as supplied by the caller per request.
type Product struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Handle      string  `json:"handle"`
	Price       float64 `json:"price"`
	Description string  `json:"description,omitempty"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	Available   bool    `json:"available,omitempty"`
}

// PriceRange bounds a shopper's preferred price band.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether price falls inside the range.
func (r PriceRange) Contains(price float64) bool {
	return price >= r.Min && price <= r.Max
}

// UserPreferences carries shopper preferences supplied with the request or
// looked up from the personalization collaborator.
type UserPreferences struct {
	PriceRange     *PriceRange `json:"priceRange,omitempty"`
	FavoriteColors []string    `json:"favoriteColors,omitempty"`
	Sizes          []string    `json:"sizes,omitempty"`
}

// ShopPolicies holds policy text passed inline on the request context.
type ShopPolicies struct {
	Shipping string `json:"shipping,omitempty"`
	Returns  string `json:"returns,omitempty"`
}

// RequestContext carries shop and session context for one chat turn.
type RequestContext struct {
	ShopDomain       string           `json:"shopDomain"`
	Locale           string           `json:"locale,omitempty"`
	CustomerID       string           `json:"customerId,omitempty"`
	CurrentPage      string           `json:"currentPage,omitempty"`
	PreviousMessages []string         `json:"previousMessages,omitempty"`
	UserPreferences  *UserPreferences `json:"userPreferences,omitempty"`
	ShopPolicies     *ShopPolicies    `json:"shopPolicies,omitempty"`
	SupportCategory  string           `json:"supportCategory,omitempty"`
}

// Request is one shopper chat turn to resolve.
type Request struct {
	UserMessage string         `json:"userMessage"`
	SessionID   string         `json:"sessionId,omitempty"`
	Products    []Product      `json:"products"`
	Context     RequestContext `json:"context"`
}

// Recommendation is a ranked product suggestion.
type Recommendation struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Handle         string  `json:"handle"`
	Price          float64 `json:"price"`
	RelevanceScore int     `json:"relevanceScore"`
	Description    string  `json:"description,omitempty"`
	Badge          string  `json:"badge,omitempty"`
	CTA            string  `json:"cta,omitempty"`
}

// SuggestedAction is a structured follow-up the storefront UI can render.
type SuggestedAction struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	URL   string `json:"url,omitempty"`
}

// Response is the engine's answer for one chat turn. It is always
// structurally valid: recommendations, quick replies, and suggested actions
// are never nil, and confidence is within [0, 1].
type Response struct {
	Message                 string            `json:"message"`
	MessageType             MessageType       `json:"messageType,omitempty"`
	Recommendations         []Recommendation  `json:"recommendations"`
	QuickReplies            []string          `json:"quickReplies"`
	SuggestedActions        []SuggestedAction `json:"suggestedActions"`
	Confidence              float64           `json:"confidence"`
	Sentiment               Sentiment         `json:"sentiment,omitempty"`
	RequiresHumanEscalation bool              `json:"requiresHumanEscalation,omitempty"`
}

// ClampScore bounds a relevance score to [0, 100].
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// ClampConfidence bounds a confidence value to [0, 1].
func ClampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
