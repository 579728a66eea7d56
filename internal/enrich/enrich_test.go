package enrich

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"news-agent/internal/extract"
	"news-agent/internal/llm"
	"news-agent/internal/record"
	"news-agent/internal/source"
)

type fakeClient struct {
	content string
	err     error
	delay   time.Duration
}

func (f *fakeClient) Generate(ctx context.Context, _ []llm.Message) (llm.Response, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return llm.Response{}, ctx.Err()
		}
	}
	if f.err != nil {
		return llm.Response{}, f.err
	}
	return llm.Response{Content: f.content}, nil
}

const validArticleJSON = `{
	"title": "Improved Title",
	"summary": "Improved summary.",
	"author": "Jane Doe",
	"category": "tech",
	"key_points": ["one", "two"],
	"confidence": "high",
	"article_type": "news"
}`

const validMessageJSON = `{
	"summary": "A short summary.",
	"sentiment": "positive",
	"topics": ["go", "news"],
	"importance": "high",
	"message_type": "discussion",
	"key_words": ["go"]
}`

func testExtraction() extract.Article {
	return extract.Article{
		URL:     "https://example.com/a",
		Title:   "Scraped Title",
		Summary: "Scraped summary.",
		Author:  "Scraped Author",
		Image:   "https://example.com/img.png",
		Success: true,
		HTML:    "<html></html>",
	}
}

func testItem() source.RawItem {
	return source.RawItem{
		ID:       7,
		Sender:   "Alice",
		Text:     "what do you all think about generics?",
		Date:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		StreamID: "42",
	}
}

func TestChain_FirstProviderWins(t *testing.T) {
	chain := NewChain([]Provider{
		{Name: "A", Client: &fakeClient{content: validArticleJSON}},
		{Name: "B", Client: &fakeClient{content: validArticleJSON}},
	}, time.Second)

	rec := chain.EnrichArticle(context.Background(), testExtraction(), "Alice", time.Now())
	if rec.Kind != record.KindArticle || rec.Article == nil {
		t.Fatalf("want article record, got %+v", rec)
	}
	if rec.Article.EnhancedBy != "A" {
		t.Fatalf("provenance: want A, got %q", rec.Article.EnhancedBy)
	}
	if rec.Article.Title != "Improved Title" || rec.Article.Confidence != "high" {
		t.Fatalf("analysis not applied: %+v", rec.Article)
	}
	if rec.Article.URL != "https://example.com/a" {
		t.Fatalf("url must come from the extraction: %q", rec.Article.URL)
	}
}

func TestChain_FallsThroughOnFailure(t *testing.T) {
	chain := NewChain([]Provider{
		{Name: "A", Client: &fakeClient{err: errors.New("boom")}},
		{Name: "B", Client: &fakeClient{content: validArticleJSON}},
	}, time.Second)

	rec := chain.EnrichArticle(context.Background(), testExtraction(), "Alice", time.Now())
	if rec.Article.EnhancedBy != "B" {
		t.Fatalf("provenance: want B, got %q", rec.Article.EnhancedBy)
	}
}

func TestChain_TimeoutAdvancesChain(t *testing.T) {
	chain := NewChain([]Provider{
		{Name: "A", Client: &fakeClient{content: validArticleJSON, delay: 200 * time.Millisecond}},
		{Name: "B", Client: &fakeClient{content: validArticleJSON}},
	}, 10*time.Millisecond)

	rec := chain.EnrichArticle(context.Background(), testExtraction(), "Alice", time.Now())
	if rec.Article.EnhancedBy != "B" {
		t.Fatalf("provenance: want B after timeout, got %q", rec.Article.EnhancedBy)
	}
}

func TestChain_MalformedResponseIsFailure(t *testing.T) {
	chain := NewChain([]Provider{
		{Name: "A", Client: &fakeClient{content: "sorry, I cannot help with that"}},
	}, time.Second)

	art := testExtraction()
	rec := chain.EnrichArticle(context.Background(), art, "Alice", time.Now())
	if rec.Article.EnhancedBy != record.NoProvider {
		t.Fatalf("malformed response must degrade to pass-through, got %q", rec.Article.EnhancedBy)
	}
}

func TestChain_PartialResponseIsFailure(t *testing.T) {
	chain := NewChain([]Provider{
		{Name: "A", Client: &fakeClient{content: `{"title": "only a title"}`}},
	}, time.Second)

	rec := chain.EnrichArticle(context.Background(), testExtraction(), "Alice", time.Now())
	if rec.Article.EnhancedBy != record.NoProvider {
		t.Fatalf("partial response must degrade to pass-through, got %q", rec.Article.EnhancedBy)
	}
}

func TestChain_CodeFencedJSONIsAccepted(t *testing.T) {
	chain := NewChain([]Provider{
		{Name: "A", Client: &fakeClient{content: "```json\n" + validArticleJSON + "\n```"}},
	}, time.Second)

	rec := chain.EnrichArticle(context.Background(), testExtraction(), "Alice", time.Now())
	if rec.Article.EnhancedBy != "A" {
		t.Fatalf("fenced JSON should parse, got provenance %q", rec.Article.EnhancedBy)
	}
}

func TestChain_ArticlePassThrough(t *testing.T) {
	chain := NewChain([]Provider{
		{Name: "A", Client: &fakeClient{err: errors.New("down")}},
		{Name: "B", Client: &fakeClient{err: errors.New("down")}},
	}, time.Second)

	art := testExtraction()
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rec := chain.EnrichArticle(context.Background(), art, "Alice", ts)

	a := rec.Article
	if a.EnhancedBy != record.NoProvider {
		t.Fatalf("provenance: want none, got %q", a.EnhancedBy)
	}
	if a.Title != art.Title || a.Summary != art.Summary || a.Author != art.Author || a.URL != art.URL {
		t.Fatalf("pass-through must copy extractor fields verbatim: %+v", a)
	}
	if a.Confidence != "low" || a.Category != "Uncategorized" || len(a.KeyPoints) != 0 {
		t.Fatalf("pass-through defaults wrong: %+v", a)
	}
	if a.Sender != "Alice" || !a.Timestamp.Equal(ts) {
		t.Fatalf("sender/timestamp lost: %+v", a)
	}
}

func TestChain_MessagePassThrough(t *testing.T) {
	chain := NewChain(nil, time.Second)

	item := testItem()
	rec := chain.EnrichMessage(context.Background(), item)
	if rec.Kind != record.KindMessage || rec.Message == nil {
		t.Fatalf("want message record, got %+v", rec)
	}
	m := rec.Message
	if m.EnhancedBy != record.NoProvider {
		t.Fatalf("provenance: want none, got %q", m.EnhancedBy)
	}
	if m.OriginalText != item.Text || m.Summary != item.Text {
		t.Fatalf("pass-through must copy the text: %+v", m)
	}
	if m.Sentiment != "neutral" || m.Importance != "medium" || m.MessageType != "unknown" {
		t.Fatalf("pass-through defaults wrong: %+v", m)
	}
	if len(m.Topics) != 0 || len(m.KeyWords) != 0 {
		t.Fatalf("pass-through must not invent topics: %+v", m)
	}
	if m.StreamID != "42" || m.Sender != "Alice" {
		t.Fatalf("item context lost: %+v", m)
	}
}

func TestChain_MessagePassThroughTruncates(t *testing.T) {
	chain := NewChain(nil, time.Second)

	item := testItem()
	item.Text = strings.Repeat("a", 150)
	rec := chain.EnrichMessage(context.Background(), item)
	if got := rec.Message.Summary; got != strings.Repeat("a", 100)+"..." {
		t.Fatalf("summary not truncated: %d chars", len(got))
	}
	if rec.Message.OriginalText != item.Text {
		t.Fatal("original text must not be truncated")
	}
}

func TestChain_MessageEnriched(t *testing.T) {
	chain := NewChain([]Provider{
		{Name: "openai", Client: &fakeClient{content: validMessageJSON}},
	}, time.Second)

	item := testItem()
	rec := chain.EnrichMessage(context.Background(), item)
	m := rec.Message
	if m.EnhancedBy != "openai" {
		t.Fatalf("provenance: want openai, got %q", m.EnhancedBy)
	}
	if m.Summary != "A short summary." || m.Sentiment != "positive" || len(m.Topics) != 2 {
		t.Fatalf("analysis not applied: %+v", m)
	}
	if m.OriginalText != item.Text || !m.Timestamp.Equal(item.Date) {
		t.Fatalf("item context lost: %+v", m)
	}
}
