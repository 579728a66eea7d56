package document

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"news-agent/internal/record"
)

const (
	mimetype = "application/vnd.oasis.opendocument.text"

	manifestXML = `<?xml version="1.0" encoding="UTF-8"?>
<manifest:manifest xmlns:manifest="urn:oasis:names:tc:opendocument:xmlns:manifest:1.0" manifest:version="1.2">
  <manifest:file-entry manifest:full-path="/" manifest:version="1.2" manifest:media-type="application/vnd.oasis.opendocument.text"/>
  <manifest:file-entry manifest:full-path="content.xml" manifest:media-type="text/xml"/>
  <manifest:file-entry manifest:full-path="styles.xml" manifest:media-type="text/xml"/>
  <manifest:file-entry manifest:full-path="meta.xml" manifest:media-type="text/xml"/>
</manifest:manifest>`

	stylesXML = `<?xml version="1.0" encoding="UTF-8"?>
<office:document-styles xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0" xmlns:style="urn:oasis:names:tc:opendocument:xmlns:style:1.0" xmlns:text="urn:oasis:names:tc:opendocument:xmlns:text:1.0" xmlns:fo="urn:oasis:names:tc:opendocument:xmlns:xsl-fo-compatible:1.0" office:version="1.2">
  <office:styles>
    <style:default-style style:family="paragraph">
      <style:text-properties fo:font-family="Arial" style:font-family-generic="swiss" style:font-pitch="variable" fo:font-size="12pt"/>
    </style:default-style>
    <style:style style:name="Standard" style:family="paragraph" style:class="text"/>
    <style:style style:name="Title" style:family="paragraph" style:class="title">
      <style:paragraph-properties fo:text-align="center"/>
      <style:text-properties fo:font-size="18pt" fo:font-weight="bold"/>
    </style:style>
    <style:style style:name="Heading_20_1" style:display-name="Heading 1" style:family="paragraph" style:class="text">
      <style:text-properties fo:font-size="16pt" fo:font-weight="bold"/>
    </style:style>
  </office:styles>
</office:document-styles>`
)

// Writer renders article records into ODT files in dir. Message records
// produce no artifact.
type Writer struct {
	dir string
	mu  sync.Mutex
	seq int
}

func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to ensure documents dir: %w", err)
	}
	return &Writer{dir: dir}, nil
}

// Write creates the document file and returns its path, or "" when the
// record kind has no artifact.
func (w *Writer) Write(rec record.Record) (string, error) {
	if rec.Kind != record.KindArticle || rec.Article == nil {
		return "", nil
	}
	w.mu.Lock()
	w.seq++
	name := fmt.Sprintf("article_%d_%s.odt", w.seq, time.Now().UTC().Format("20060102_150405"))
	w.mu.Unlock()

	path := filepath.Join(w.dir, name)
	if err := writeODT(path, rec.Article); err != nil {
		return "", err
	}
	return path, nil
}

func writeODT(path string, art *record.Article) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create odt file: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)

	// mimetype must be the first entry and stored uncompressed.
	mw, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	if err != nil {
		return fmt.Errorf("failed to add mimetype: %w", err)
	}
	if _, err := mw.Write([]byte(mimetype)); err != nil {
		return fmt.Errorf("failed to write mimetype: %w", err)
	}

	entries := []struct{ name, body string }{
		{"META-INF/manifest.xml", manifestXML},
		{"content.xml", contentXML(art)},
		{"styles.xml", stylesXML},
		{"meta.xml", metaXML(art)},
	}
	for _, e := range entries {
		ew, err := zw.Create(e.name)
		if err != nil {
			return fmt.Errorf("failed to add %s: %w", e.name, err)
		}
		if _, err := ew.Write([]byte(e.body)); err != nil {
			return fmt.Errorf("failed to write %s: %w", e.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize odt: %w", err)
	}
	return nil
}

func metaXML(art *record.Article) string {
	stamp := art.Timestamp.UTC().Format("2006-01-02T15:04:05")
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<office:document-meta xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0" xmlns:meta="urn:oasis:names:tc:opendocument:xmlns:meta:1.0" xmlns:dc="http://purl.org/dc/elements/1.1/" office:version="1.2">
  <office:meta>
    <meta:generator>Telegram News Agent</meta:generator>
    <dc:title>%s</dc:title>
    <dc:creator>%s</dc:creator>
    <meta:creation-date>%s</meta:creation-date>
    <dc:date>%s</dc:date>
  </office:meta>
</office:document-meta>`, escapeXML(art.Title), escapeXML(art.Author), stamp, stamp)
}

func contentXML(art *record.Article) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<office:document-content xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0" xmlns:text="urn:oasis:names:tc:opendocument:xmlns:text:1.0" office:version="1.2">
  <office:body>
    <office:text>
`)
	para := func(style, text string) {
		fmt.Fprintf(&b, "      <text:p text:style-name=%q>%s</text:p>\n", style, text)
	}

	para("Title", escapeXML(art.Title))
	para("Heading_20_1", "Article Information")
	para("Standard", "Author: "+escapeXML(art.Author))
	para("Standard", "Sender: "+escapeXML(art.Sender))
	para("Standard", "Source URL: "+escapeXML(art.URL))
	if art.EnhancedBy != record.NoProvider {
		para("Standard", "Enhanced by: "+escapeXML(strings.ToUpper(art.EnhancedBy)))
		para("Standard", "Category: "+escapeXML(art.Category))
		para("Standard", "Confidence: "+escapeXML(art.Confidence))
	} else {
		para("Standard", "Processing: Basic extraction only")
	}
	para("Heading_20_1", "Summary")
	para("Standard", escapeXML(art.Summary))
	if len(art.KeyPoints) > 0 {
		para("Heading_20_1", "Key Points")
		for _, kp := range art.KeyPoints {
			para("Standard", "- "+escapeXML(kp))
		}
	}
	if art.Image != "" {
		para("Heading_20_1", "Image")
		para("Standard", escapeXML(art.Image))
	}

	b.WriteString(`    </office:text>
  </office:body>
</office:document-content>`)
	return b.String()
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}
