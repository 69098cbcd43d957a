package sources

import (
	"bytes"
	"context"
	"strings"

	"github.com/maxaizer/jobs-collector/internal/config"
	"github.com/maxaizer/jobs-collector/internal/entities"
	"github.com/pkg/errors"
	"golang.org/x/net/html"
)

// Careers scrapes one company's career page. Every field is located by a CSS
// class name from the source configuration; the company is fixed by configuration.
type Careers struct {
	fetcher
	cfg config.SourceConfig
}

func NewCareers(cfg config.SourceConfig) (*Careers, error) {
	if cfg.URL == "" || cfg.Company == "" {
		return nil, errors.New("careers source needs url and company")
	}
	if cfg.Selectors["item"] == "" || cfg.Selectors["title"] == "" {
		return nil, errors.New("careers source needs item and title selectors")
	}
	return &Careers{fetcher: newFetcher(cfg, config.SourceCareers), cfg: cfg}, nil
}

func (c *Careers) Fetch(ctx context.Context) (Result, error) {
	body, err := c.get(ctx, c.cfg.URL, nil)
	if err != nil {
		return Result{}, err
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return Result{}, newAdapterError(c.source, KindSchema, err, "error parsing career page")
	}

	items := findByClass(doc, c.cfg.Selectors["item"])
	if len(items) == 0 && firstByClass(doc, c.cfg.Selectors["list"]) == nil {
		return Result{}, newAdapterError(c.source, KindSchema, nil,
			"no elements with class %q on career page", c.cfg.Selectors["item"])
	}

	var result Result
	for _, item := range items {
		posting, ok := c.toRawPosting(item)
		if !ok {
			result.Skipped++
			continue
		}
		result.Postings = append(result.Postings, posting)
	}
	return result, nil
}

func (c *Careers) toRawPosting(item *html.Node) (entities.RawPosting, bool) {
	title := c.text(item, "title")
	link := c.link(item)
	if title == "" || link == "" {
		return entities.RawPosting{}, false
	}

	return entities.RawPosting{
		Source:        c.source,
		SourceKind:    c.kind,
		SourceID:      link,
		URL:           link,
		Title:         title,
		Company:       c.cfg.Company,
		CompanyDomain: c.cfg.CompanyDomain,
		Location:      c.text(item, "location"),
		Salary:        c.text(item, "salary"),
		Experience:    c.text(item, "experience"),
		Skills:        splitList(c.text(item, "skills")),
		Description:   nodeText(item),
		Remote:        c.text(item, "remote"),
		Deadline:      c.text(item, "deadline"),
		CategoryHint:  firstNonEmpty(c.text(item, "category"), c.cfg.CategoryHint),
		FetchedAt:     c.now(),
	}, true
}

func (c *Careers) text(item *html.Node, field string) string {
	node := firstByClass(item, c.cfg.Selectors[field])
	if node == nil {
		return ""
	}
	return nodeText(node)
}

// link prefers the element named by the link selector, then the item itself,
// then the first anchor inside the item.
func (c *Careers) link(item *html.Node) string {
	candidates := []*html.Node{firstByClass(item, c.cfg.Selectors["link"]), item}
	for _, node := range candidates {
		if node != nil && node.Type == html.ElementNode && node.Data == "a" && attr(node, "href") != "" {
			return resolveURL(c.cfg.URL, strings.TrimSpace(attr(node, "href")))
		}
	}

	if anchor := firstElement(item, "a"); anchor != nil && attr(anchor, "href") != "" {
		return resolveURL(c.cfg.URL, strings.TrimSpace(attr(anchor, "href")))
	}
	return ""
}

func firstElement(root *html.Node, tag string) *html.Node {
	for n := root.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == html.ElementNode && n.Data == tag {
			return n
		}
		if found := firstElement(n, tag); found != nil {
			return found
		}
	}
	return nil
}
