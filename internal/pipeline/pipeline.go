package pipeline

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"
	"time"

	"news-agent/internal/extract"
	"news-agent/internal/record"
	"news-agent/internal/source"
	"news-agent/internal/watermark"
)

var urlPattern = regexp.MustCompile(`https?://[\w.-]+(?::\d+)?(?:/[\w/_.%~-]*)?(?:\?[\w&=%.~-]*)?(?:#[\w.-]*)?`)

// Extractor scrapes one URL, best effort.
type Extractor interface {
	Extract(ctx context.Context, url string) extract.Article
}

// Enricher turns extractions and raw items into records. It never fails; a
// fully degraded chain still yields a pass-through record.
type Enricher interface {
	EnrichArticle(ctx context.Context, art extract.Article, sender string, ts time.Time) record.Record
	EnrichMessage(ctx context.Context, item source.RawItem) record.Record
}

// RecordStore is the durable output of the pipeline.
type RecordStore interface {
	Append(rec record.Record) error
}

// DocumentWriter renders a persisted record into a standalone document file.
// A nil writer or an empty returned path means no artifact.
type DocumentWriter interface {
	Write(rec record.Record) (string, error)
}

// Pipeline drives one stream through a bounded catch-up pass and then a live
// subscription. A single control flow processes one item end to end at a
// time; the stores never see concurrent writers.
type Pipeline struct {
	stream     source.Stream
	marks      *watermark.Store
	extractor  Extractor
	enricher   Enricher
	records    RecordStore
	documents  DocumentWriter
	streamID   string
	fetchLimit int
}

func New(stream source.Stream, marks *watermark.Store, extractor Extractor, enricher Enricher, records RecordStore, documents DocumentWriter, streamID string, fetchLimit int) *Pipeline {
	if fetchLimit <= 0 {
		fetchLimit = 200
	}
	return &Pipeline{
		stream:     stream,
		marks:      marks,
		extractor:  extractor,
		enricher:   enricher,
		records:    records,
		documents:  documents,
		streamID:   streamID,
		fetchLimit: fetchLimit,
	}
}

// Run executes the catch-up pass and then consumes the live subscription
// until ctx is cancelled. Cancellation is honored between items only, so an
// in-flight item always reaches a persisted-or-failed state.
func (p *Pipeline) Run(ctx context.Context) error {
	if err := p.catchUp(ctx); err != nil {
		return err
	}
	return p.live(ctx)
}

func (p *Pipeline) catchUp(ctx context.Context) error {
	items, err := p.stream.FetchRecent(ctx, p.streamID, p.fetchLimit)
	if err != nil {
		return fmt.Errorf("failed to fetch recent items: %w", err)
	}

	var pending []source.RawItem
	for _, item := range items {
		if p.marks.ShouldProcess(item.Date, p.streamID) {
			pending = append(pending, item)
		}
	}
	// FetchRecent returns newest first; process oldest to newest.
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].Date.Before(pending[j].Date)
	})

	log.Printf("catch-up: %d new items on stream %s", len(pending), p.streamID)
	for _, item := range pending {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := p.processItem(ctx, item); err != nil {
			log.Printf("failed to process item %d: %v", item.ID, err)
		}
	}
	return nil
}

func (p *Pipeline) live(ctx context.Context) error {
	items, err := p.stream.Subscribe(ctx, p.streamID)
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	log.Printf("listening for new items on stream %s", p.streamID)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case item, ok := <-items:
			if !ok {
				return ctx.Err()
			}
			if !p.marks.ShouldProcess(item.Date, p.streamID) {
				continue
			}
			if err := p.processItem(ctx, item); err != nil {
				log.Printf("failed to process item %d: %v", item.ID, err)
			}
		}
	}
}

// processItem runs one item through detection, enrichment and persistence.
// The watermark advances only after the record write is confirmed, so a
// crash mid-item leaves the item eligible for the next session.
func (p *Pipeline) processItem(ctx context.Context, item source.RawItem) error {
	if strings.TrimSpace(item.Text) == "" {
		// Nothing to enrich; still mark the item as seen.
		return p.marks.Advance(item.Date, item.StreamID)
	}

	var rec record.Record
	if url := firstURL(item.Text); url != "" {
		art := p.extractor.Extract(ctx, url)
		rec = p.enricher.EnrichArticle(ctx, art, item.Sender, item.Date)
	} else {
		rec = p.enricher.EnrichMessage(ctx, item)
	}

	if err := p.records.Append(rec); err != nil {
		return fmt.Errorf("failed to persist record: %w", err)
	}

	if p.documents != nil {
		if path, err := p.documents.Write(rec); err != nil {
			log.Printf("failed to write document for item %d: %v", item.ID, err)
		} else if path != "" {
			log.Printf("document created: %s", path)
		}
	}

	if err := p.marks.Advance(item.Date, item.StreamID); err != nil {
		return fmt.Errorf("failed to advance watermark: %w", err)
	}
	return nil
}

// firstURL returns the first URL embedded in text, or "".
func firstURL(text string) string {
	return urlPattern.FindString(text)
}
