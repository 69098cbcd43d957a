package sources

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/maxaizer/jobs-collector/internal/config"
	"github.com/maxaizer/jobs-collector/internal/entities"
	"github.com/mmcdole/gofeed"
)

// RSS reads an RSS or Atom job board feed. Boards that put the employer into
// the item title as "Company: Role" are split accordingly.
type RSS struct {
	fetcher
	cfg config.SourceConfig
}

func NewRSS(cfg config.SourceConfig) *RSS {
	return &RSS{fetcher: newFetcher(cfg, config.SourceRSS), cfg: cfg}
}

func (r *RSS) Fetch(ctx context.Context) (Result, error) {
	body, err := r.get(ctx, r.cfg.URL, nil)
	if err != nil {
		return Result{}, err
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return Result{}, newAdapterError(r.source, KindSchema, err, "error parsing feed")
	}

	var result Result
	for _, item := range feed.Items {
		posting, ok := r.toRawPosting(item)
		if !ok {
			result.Skipped++
			continue
		}
		result.Postings = append(result.Postings, posting)
	}
	return result, nil
}

func (r *RSS) toRawPosting(item *gofeed.Item) (entities.RawPosting, bool) {
	if item == nil || item.Link == "" {
		return entities.RawPosting{}, false
	}

	title, company := splitCompanyTitle(item.Title)
	if company == "" && item.Author != nil {
		company = strings.TrimSpace(item.Author.Name)
	}
	if title == "" || company == "" {
		return entities.RawPosting{}, false
	}

	region := firstNonEmpty(item.Custom["region"], item.Custom["location"], item.Custom["country"])

	var posted string
	if item.PublishedParsed != nil {
		posted = item.PublishedParsed.UTC().Format(time.RFC3339)
	}

	return entities.RawPosting{
		Source:       r.source,
		SourceKind:   r.kind,
		SourceID:     firstNonEmpty(item.GUID, item.Link),
		URL:          item.Link,
		Title:        title,
		Company:      company,
		Location:     region,
		Skills:       item.Categories,
		Description:  htmlText(firstNonEmpty(item.Content, item.Description)),
		Remote:       strings.Join(append([]string{region}, item.Categories...), ", "),
		PostedAt:     posted,
		CategoryHint: r.cfg.CategoryHint,
		FetchedAt:    r.now(),
	}, true
}

func splitCompanyTitle(title string) (string, string) {
	title = strings.TrimSpace(title)
	if idx := strings.Index(title, ": "); idx > 0 {
		return strings.TrimSpace(title[idx+2:]), strings.TrimSpace(title[:idx])
	}
	return title, ""
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			return value
		}
	}
	return ""
}
