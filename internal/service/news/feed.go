package news

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

// Item is one feed entry.
type Item struct {
	Title   string
	Link    string
	Summary string
	PubDate string
}

// ID returns the de-duplication key: the link (or guid), else the title.
func (i Item) ID() string {
	if i.Link != "" {
		return i.Link
	}
	return i.Title
}

// Text is the body handed to the pipeline.
func (i Item) Text() string {
	if i.Summary == "" {
		return i.Title
	}
	return i.Title + ". " + i.Summary
}

// ParseFeed decodes an RSS, Atom or JSON feed. Non-UTF-8 documents are
// transcoded using their declared charset.
func ParseFeed(r io.Reader) ([]Item, error) {
	feed, err := gofeed.NewParser().Parse(r)
	if err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}

	items := make([]Item, 0, len(feed.Items))
	for _, it := range feed.Items {
		if it == nil {
			continue
		}
		summary := it.Description
		if strings.TrimSpace(summary) == "" {
			summary = it.Content
		}
		item := Item{
			Title:   plainText(it.Title),
			Link:    strings.TrimSpace(it.Link),
			Summary: plainText(summary),
			PubDate: strings.TrimSpace(it.Published),
		}
		if item.Link == "" {
			item.Link = strings.TrimSpace(it.GUID)
		}
		if item.Title == "" && item.Summary == "" {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// plainText drops markup, scripts and styles, and collapses whitespace.
func plainText(s string) string {
	if !strings.ContainsRune(s, '<') {
		return collapse(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return collapse(s)
	}
	var b strings.Builder
	collectText(doc.Selection, &b)
	return collapse(b.String())
}

func collectText(sel *goquery.Selection, b *strings.Builder) {
	sel.Contents().Each(func(_ int, node *goquery.Selection) {
		switch goquery.NodeName(node) {
		case "#text":
			b.WriteString(node.Text())
		case "script", "style":
		default:
			collectText(node, b)
			b.WriteByte(' ')
		}
	})
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
