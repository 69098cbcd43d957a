package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/maxaizer/jobs-collector/internal/config"
	"github.com/maxaizer/jobs-collector/internal/entities"
	"github.com/pkg/errors"
)

var defaultFieldMapping = map[string]string{
	"id":             "id",
	"title":          "title",
	"company":        "company",
	"company_domain": "company_domain",
	"url":            "url",
	"location":       "location",
	"salary":         "salary",
	"experience":     "experience",
	"skills":         "skills",
	"description":    "description",
	"remote":         "remote",
	"deadline":       "deadline",
	"posted_at":      "posted_at",
	"category":       "category",
}

// JSONFeed reads a custom URL returning a JSON array of postings. Field paths
// are dotted ("company.name") and configured per source; "root" points at the
// array when it is nested in an object.
type JSONFeed struct {
	fetcher
	cfg    config.SourceConfig
	fields map[string]string
}

func NewJSONFeed(cfg config.SourceConfig) (*JSONFeed, error) {
	if cfg.URL == "" {
		return nil, errors.New("jsonfeed source needs url")
	}

	fields := make(map[string]string, len(defaultFieldMapping))
	for key, path := range defaultFieldMapping {
		fields[key] = path
	}
	for key, path := range cfg.Fields {
		fields[strings.ToLower(key)] = path
	}

	return &JSONFeed{fetcher: newFetcher(cfg, config.SourceJSONFeed), cfg: cfg, fields: fields}, nil
}

func (f *JSONFeed) Fetch(ctx context.Context) (Result, error) {
	body, err := f.get(ctx, f.cfg.URL, nil)
	if err != nil {
		return Result{}, err
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	var document any
	if err := decoder.Decode(&document); err != nil {
		return Result{}, newAdapterError(f.source, KindSchema, err, "error decoding JSON response")
	}

	root := document
	if path := f.fields["root"]; path != "" {
		root = lookupPath(document, path)
	}
	items, ok := root.([]any)
	if !ok {
		return Result{}, newAdapterError(f.source, KindSchema, nil, "feed root is not an array")
	}

	var result Result
	for _, item := range items {
		object, ok := item.(map[string]any)
		if !ok {
			result.Skipped++
			continue
		}
		posting, ok := f.toRawPosting(object)
		if !ok {
			result.Skipped++
			continue
		}
		result.Postings = append(result.Postings, posting)
	}
	return result, nil
}

func (f *JSONFeed) toRawPosting(item map[string]any) (entities.RawPosting, bool) {
	title := f.value(item, "title")
	company := f.value(item, "company")
	domain := f.value(item, "company_domain")
	link := resolveURL(f.cfg.URL, f.value(item, "url"))
	if title == "" || (company == "" && domain == "") || link == "" {
		return entities.RawPosting{}, false
	}

	return entities.RawPosting{
		Source:        f.source,
		SourceKind:    f.kind,
		SourceID:      firstNonEmpty(f.value(item, "id"), link),
		URL:           link,
		Title:         title,
		Company:       company,
		CompanyDomain: domain,
		Location:      f.value(item, "location"),
		Salary:        f.value(item, "salary"),
		Experience:    f.value(item, "experience"),
		Skills:        f.list(item, "skills"),
		Description:   htmlText(f.value(item, "description")),
		Remote:        f.value(item, "remote"),
		Deadline:      f.value(item, "deadline"),
		PostedAt:      f.value(item, "posted_at"),
		CategoryHint:  firstNonEmpty(f.value(item, "category"), f.cfg.CategoryHint),
		FetchedAt:     f.now(),
	}, true
}

func (f *JSONFeed) value(item map[string]any, field string) string {
	return stringify(lookupPath(item, f.fields[field]), field)
}

func (f *JSONFeed) list(item map[string]any, field string) []string {
	switch value := lookupPath(item, f.fields[field]).(type) {
	case []any:
		var list []string
		for _, element := range value {
			if s := stringify(element, field); s != "" {
				list = append(list, s)
			}
		}
		return list
	case string:
		return splitList(value)
	default:
		return nil
	}
}

func lookupPath(document any, path string) any {
	if path == "" {
		return nil
	}

	current := document
	for _, key := range strings.Split(path, ".") {
		object, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = object[key]
	}
	return current
}

func stringify(value any, field string) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case bool:
		if v && field == "remote" {
			return "remote"
		}
		return ""
	case map[string]any:
		// tag objects such as {"name": "Go"}
		for _, key := range []string{"name", "title", "value"} {
			if s, ok := v[key].(string); ok {
				return strings.TrimSpace(s)
			}
		}
		return ""
	default:
		return ""
	}
}
