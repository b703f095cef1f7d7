package arxiv

import (
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed/atom"
)

const (
	// timestampLayout is the exact form of <published> and <updated>.
	timestampLayout = "2006-01-02T15:04:05Z"

	// pdfMediaType marks the link that points at the PDF rendition.
	pdfMediaType = "application/pdf"

	// extensionPrefix is the namespace prefix of arXiv's Atom extensions
	// (xmlns:arxiv="http://arxiv.org/schemas/atom").
	extensionPrefix = "arxiv"
)

// EntryError describes why a feed entry could not be normalized.
type EntryError struct {
	EntryID string
	Field   string
	Reason  string
}

// Error implements the error interface.
func (e *EntryError) Error() string {
	return fmt.Sprintf("arxiv entry %q: %s: %s", e.EntryID, e.Field, e.Reason)
}

// paperIDFromEntryID returns the last path segment of an entry id URI,
// e.g. "http://arxiv.org/abs/2107.12345v1" yields "2107.12345v1".
func paperIDFromEntryID(id string) string {
	id = strings.TrimSpace(id)
	if i := strings.LastIndex(id, "/"); i >= 0 {
		return id[i+1:]
	}
	return id
}

// parseTimestamp parses a feed timestamp with the exact arXiv layout.
func parseTimestamp(entryID, field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, &EntryError{EntryID: entryID, Field: field, Reason: "missing"}
	}
	t, err := time.Parse(timestampLayout, value)
	if err != nil {
		return time.Time{}, &EntryError{EntryID: entryID, Field: field, Reason: fmt.Sprintf("bad timestamp %q", value)}
	}
	return t.UTC(), nil
}

// pdfLink returns the first link advertised as a PDF, or "".
func pdfLink(links []*atom.Link) string {
	for _, link := range links {
		if link != nil && link.Type == pdfMediaType {
			return link.Href
		}
	}
	return ""
}

// extensionValue returns the first value of an arXiv extension element, or "".
func extensionValue(entry *atom.Entry, name string) string {
	byName, ok := entry.Extensions[extensionPrefix]
	if !ok {
		return ""
	}
	values := byName[name]
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0].Value)
}
