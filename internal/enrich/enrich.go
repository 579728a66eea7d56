package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"news-agent/internal/extract"
	"news-agent/internal/llm"
	"news-agent/internal/record"
	"news-agent/internal/source"
)

// Provider pairs a chain position name with its client. The name becomes the
// provenance of any record the provider produces.
type Provider struct {
	Name   string
	Client llm.Client
}

// Chain tries providers in order and degrades to a pass-through record when
// every attempt fails. Enrichment is all-or-nothing per attempt: a malformed
// or partial response advances the chain, it is never accepted piecemeal.
type Chain struct {
	providers []Provider
	timeout   time.Duration
}

func NewChain(providers []Provider, timeout time.Duration) *Chain {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Chain{providers: providers, timeout: timeout}
}

type articleAnalysis struct {
	Title       string   `json:"title"`
	Summary     string   `json:"summary"`
	Author      string   `json:"author"`
	Category    string   `json:"category"`
	KeyPoints   []string `json:"key_points"`
	Confidence  string   `json:"confidence"`
	ArticleType string   `json:"article_type"`
}

type messageAnalysis struct {
	Summary     string   `json:"summary"`
	Sentiment   string   `json:"sentiment"`
	Topics      []string `json:"topics"`
	Importance  string   `json:"importance"`
	MessageType string   `json:"message_type"`
	KeyWords    []string `json:"key_words"`
}

// EnrichArticle always returns a record. Provenance names the provider that
// produced the analysis, or "none" for the pass-through copy.
func (c *Chain) EnrichArticle(ctx context.Context, art extract.Article, sender string, ts time.Time) record.Record {
	user := articleUserPrompt(art)
	for _, p := range c.providers {
		content, err := c.attempt(ctx, p, articleSystemPrompt, user)
		if err != nil {
			log.Printf("provider %s failed to enrich article %s: %v", p.Name, art.URL, err)
			continue
		}
		var analysis articleAnalysis
		if err := parseAnalysis(content, &analysis); err != nil {
			log.Printf("provider %s returned malformed article analysis for %s: %v", p.Name, art.URL, err)
			continue
		}
		if analysis.Title == "" || analysis.Summary == "" || analysis.Confidence == "" {
			log.Printf("provider %s returned partial article analysis for %s", p.Name, art.URL)
			continue
		}
		return record.Record{Kind: record.KindArticle, Article: &record.Article{
			URL:         art.URL,
			Title:       analysis.Title,
			Summary:     analysis.Summary,
			Author:      analysis.Author,
			Image:       art.Image,
			Category:    analysis.Category,
			KeyPoints:   analysis.KeyPoints,
			Confidence:  analysis.Confidence,
			ArticleType: analysis.ArticleType,
			EnhancedBy:  p.Name,
			Sender:      sender,
			Timestamp:   ts,
		}}
	}
	return passThroughArticle(art, sender, ts)
}

// EnrichMessage always returns a record, mirroring EnrichArticle for items
// without a URL.
func (c *Chain) EnrichMessage(ctx context.Context, item source.RawItem) record.Record {
	user := messageUserPrompt(item)
	for _, p := range c.providers {
		content, err := c.attempt(ctx, p, messageSystemPrompt, user)
		if err != nil {
			log.Printf("provider %s failed to enrich message %d: %v", p.Name, item.ID, err)
			continue
		}
		var analysis messageAnalysis
		if err := parseAnalysis(content, &analysis); err != nil {
			log.Printf("provider %s returned malformed message analysis for %d: %v", p.Name, item.ID, err)
			continue
		}
		if analysis.Summary == "" || analysis.Sentiment == "" {
			log.Printf("provider %s returned partial message analysis for %d", p.Name, item.ID)
			continue
		}
		return record.Record{Kind: record.KindMessage, Message: &record.Message{
			OriginalText: item.Text,
			Summary:      analysis.Summary,
			Sentiment:    analysis.Sentiment,
			Topics:       analysis.Topics,
			Importance:   analysis.Importance,
			MessageType:  analysis.MessageType,
			KeyWords:     analysis.KeyWords,
			EnhancedBy:   p.Name,
			Sender:       item.Sender,
			Timestamp:    item.Date,
			StreamID:     item.StreamID,
		}}
	}
	return passThroughMessage(item)
}

// attempt issues one bounded call to one provider. There is no retry here: a
// transient failure is absorbed by the next chain member, not by re-calling.
func (c *Chain) attempt(ctx context.Context, p Provider, system, user string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	resp, err := p.Client.Generate(ctx, []llm.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.Content) == "" {
		return "", fmt.Errorf("empty response")
	}
	return resp.Content, nil
}

// parseAnalysis tolerates code fences around the JSON but nothing else.
func parseAnalysis(content string, out interface{}) error {
	s := strings.TrimSpace(content)
	if i := strings.Index(s, "{"); i >= 0 {
		if j := strings.LastIndex(s, "}"); j > i {
			s = s[i : j+1]
		}
	}
	return json.Unmarshal([]byte(s), out)
}

func passThroughArticle(art extract.Article, sender string, ts time.Time) record.Record {
	return record.Record{Kind: record.KindArticle, Article: &record.Article{
		URL:         art.URL,
		Title:       art.Title,
		Summary:     art.Summary,
		Author:      art.Author,
		Image:       art.Image,
		Category:    "Uncategorized",
		KeyPoints:   []string{},
		Confidence:  "low",
		ArticleType: "unknown",
		EnhancedBy:  record.NoProvider,
		Sender:      sender,
		Timestamp:   ts,
	}}
}

func passThroughMessage(item source.RawItem) record.Record {
	return record.Record{Kind: record.KindMessage, Message: &record.Message{
		OriginalText: item.Text,
		Summary:      truncate(item.Text, 100),
		Sentiment:    "neutral",
		Topics:       []string{},
		Importance:   "medium",
		MessageType:  "unknown",
		KeyWords:     []string{},
		EnhancedBy:   record.NoProvider,
		Sender:       item.Sender,
		Timestamp:    item.Date,
		StreamID:     item.StreamID,
	}}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
