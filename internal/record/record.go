package record

import "time"

type Kind string

const (
	KindArticle Kind = "article"
	KindMessage Kind = "message"
)

// NoProvider is the provenance value for records the pass-through path
// produced. It must never be replaced with a provider name after the fact.
const NoProvider = "none"

// Record is the tagged union persisted for every processed item. Exactly one
// of Article or Message is set, matching Kind.
type Record struct {
	Kind    Kind     `json:"kind"`
	Article *Article `json:"article,omitempty"`
	Message *Message `json:"message,omitempty"`
}

type Article struct {
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	Author      string    `json:"author"`
	Image       string    `json:"image,omitempty"`
	Category    string    `json:"category"`
	KeyPoints   []string  `json:"key_points"`
	Confidence  string    `json:"confidence"`
	ArticleType string    `json:"article_type"`
	EnhancedBy  string    `json:"enhanced_by"`
	Sender      string    `json:"sender"`
	Timestamp   time.Time `json:"timestamp"`
}

type Message struct {
	OriginalText string    `json:"original_message"`
	Summary      string    `json:"summary"`
	Sentiment    string    `json:"sentiment"`
	Topics       []string  `json:"topics"`
	Importance   string    `json:"importance"`
	MessageType  string    `json:"message_type"`
	KeyWords     []string  `json:"key_words"`
	EnhancedBy   string    `json:"enhanced_by"`
	Sender       string    `json:"sender"`
	Timestamp    time.Time `json:"timestamp"`
	StreamID     string    `json:"chat_id"`
}
