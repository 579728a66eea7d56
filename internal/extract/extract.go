package extract

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// maxHTMLSnippet bounds the page excerpt handed to enrichment prompts.
	maxHTMLSnippet = 8 * 1024
	maxBodySize    = 2 * 1024 * 1024
)

// Article is the best-effort result of scraping one URL. Absent fields are
// valid; Success reports whether the fetch and parse went through at all.
type Article struct {
	URL     string
	Title   string
	Summary string
	Author  string
	Image   string
	Success bool

	// HTML carries a truncated page excerpt for enrichment context.
	// Never serialized.
	HTML string
}

// Extractor scrapes structural metadata from article pages.
type Extractor struct {
	client *http.Client
}

func New(timeout time.Duration) *Extractor {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Extractor{client: &http.Client{Timeout: timeout}}
}

// Extract never fails: any fetch or parse problem yields an Article with
// Success=false and only the URL populated.
func (e *Extractor) Extract(ctx context.Context, pageURL string) Article {
	art := Article{URL: pageURL}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		log.Printf("failed to build request for %s: %v", pageURL, err)
		return art
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		log.Printf("failed to fetch %s: %v", pageURL, err)
		return art
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Printf("fetch %s returned %s", pageURL, resp.Status)
		return art
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		log.Printf("failed to read %s: %v", pageURL, err)
		return art
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		log.Printf("failed to parse %s: %v", pageURL, err)
		return art
	}

	art.Success = true
	art.HTML = string(body)
	if len(art.HTML) > maxHTMLSnippet {
		art.HTML = art.HTML[:maxHTMLSnippet]
	}
	art.Title = findTitle(doc)
	art.Summary = findSummary(doc)
	art.Author = findAuthor(doc)
	art.Image = absoluteURL(findImage(doc), pageURL)
	return art
}

func findTitle(doc *goquery.Document) string {
	for _, sel := range []string{"h1", "title", ".title", ".headline"} {
		if s := strings.TrimSpace(doc.Find(sel).First().Text()); s != "" {
			return s
		}
	}
	return ""
}

func findSummary(doc *goquery.Document) string {
	if c, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		return strings.TrimSpace(c)
	}
	return ""
}

func findAuthor(doc *goquery.Document) string {
	if c, ok := doc.Find(`meta[name="author"]`).First().Attr("content"); ok {
		if s := strings.TrimSpace(c); s != "" {
			return s
		}
	}
	for _, sel := range []string{".author", ".byline", `[rel="author"]`} {
		if s := strings.TrimSpace(doc.Find(sel).First().Text()); s != "" {
			return s
		}
	}
	return ""
}

func findImage(doc *goquery.Document) string {
	for _, sel := range []string{`meta[property="og:image"]`, `meta[name="twitter:image"]`} {
		if c, ok := doc.Find(sel).First().Attr("content"); ok && c != "" {
			return c
		}
	}
	for _, sel := range []string{".featured-image img", "article img", ".content img"} {
		if c, ok := doc.Find(sel).First().Attr("src"); ok && c != "" {
			return c
		}
	}
	return ""
}

func absoluteURL(img, pageURL string) string {
	if img == "" {
		return ""
	}
	if strings.HasPrefix(img, "//") {
		return "https:" + img
	}
	if strings.HasPrefix(img, "/") {
		if u, err := url.Parse(pageURL); err == nil {
			return fmt.Sprintf("%s://%s%s", u.Scheme, u.Host, img)
		}
	}
	return img
}
