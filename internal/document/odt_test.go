package document

import (
	"archive/zip"
	"io"
	"strings"
	"testing"
	"time"

	"news-agent/internal/record"
)

func articleRecord() record.Record {
	return record.Record{Kind: record.KindArticle, Article: &record.Article{
		URL:        "https://example.com/a?x=1&y=2",
		Title:      "Tom & Jerry <3",
		Summary:    "A summary.",
		Author:     "Jane Doe",
		Category:   "tech",
		KeyPoints:  []string{"one", "two"},
		Confidence: "high",
		EnhancedBy: "openai",
		Sender:     "Alice",
		Timestamp:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}}
}

func TestWriter_ArticleDocument(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	if err != nil {
		t.Fatalf("init writer: %v", err)
	}

	path, err := w.Write(articleRecord())
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if path == "" {
		t.Fatal("article record must produce a document")
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("document is not a readable zip: %v", err)
	}
	defer zr.Close()

	if len(zr.File) == 0 || zr.File[0].Name != "mimetype" {
		t.Fatal("mimetype must be the first zip entry")
	}
	if zr.File[0].Method != zip.Store {
		t.Fatal("mimetype must be stored uncompressed")
	}

	var content string
	for _, f := range zr.File {
		if f.Name != "content.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open content.xml: %v", err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read content.xml: %v", err)
		}
		content = string(data)
	}
	if content == "" {
		t.Fatal("content.xml missing")
	}
	if !strings.Contains(content, "Tom &amp; Jerry &lt;3") {
		t.Fatalf("title not escaped into content: %s", content)
	}
	if !strings.Contains(content, "Enhanced by: OPENAI") {
		t.Fatal("provenance missing from document")
	}
}

func TestWriter_PassThroughDocument(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	if err != nil {
		t.Fatalf("init writer: %v", err)
	}
	rec := articleRecord()
	rec.Article.EnhancedBy = record.NoProvider

	path, err := w.Write(rec)
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	defer zr.Close()
	for _, f := range zr.File {
		if f.Name != "content.xml" {
			continue
		}
		rc, _ := f.Open()
		data, _ := io.ReadAll(rc)
		rc.Close()
		if !strings.Contains(string(data), "Basic extraction only") {
			t.Fatal("pass-through document must not claim enhancement")
		}
	}
}

func TestWriter_MessageHasNoArtifact(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	if err != nil {
		t.Fatalf("init writer: %v", err)
	}

	path, err := w.Write(record.Record{Kind: record.KindMessage, Message: &record.Message{OriginalText: "x"}})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if path != "" {
		t.Fatalf("message record must not produce a document, got %q", path)
	}
}
