package sources

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/maxaizer/jobs-collector/internal/config"
	"github.com/maxaizer/jobs-collector/internal/entities"
)

const saraminURL = "https://oapi.saramin.co.kr/job-search"

type saraminName struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type saraminJob struct {
	ID      string `json:"id"`
	URL     string `json:"url"`
	Company struct {
		Detail struct {
			Href string `json:"href"`
			Name string `json:"name"`
		} `json:"detail"`
	} `json:"company"`
	Position struct {
		Title           string      `json:"title"`
		Location        saraminName `json:"location"`
		JobCode         saraminName `json:"job-code"`
		ExperienceLevel struct {
			Name string `json:"name"`
		} `json:"experience-level"`
	} `json:"position"`
	Keyword             string      `json:"keyword"`
	Salary              saraminName `json:"salary"`
	PostingTimestamp    string      `json:"posting-timestamp"`
	ExpirationTimestamp string      `json:"expiration-timestamp"`
	CloseType           saraminName `json:"close-type"`
}

type saraminResponse struct {
	Jobs *struct {
		Count int               `json:"count"`
		Start int               `json:"start"`
		Total string            `json:"total"`
		Job   []json.RawMessage `json:"job"`
	} `json:"jobs"`
}

// Saramin reads the Saramin open API job search.
type Saramin struct {
	fetcher
	cfg config.SourceConfig
}

func NewSaramin(cfg config.SourceConfig) *Saramin {
	if cfg.URL == "" {
		cfg.URL = saraminURL
	}
	if cfg.PageSize <= 0 || cfg.PageSize > 110 {
		cfg.PageSize = 110
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 1
	}
	return &Saramin{fetcher: newFetcher(cfg, config.SourceSaramin), cfg: cfg}
}

func (s *Saramin) Fetch(ctx context.Context) (Result, error) {
	var result Result

	for page := 0; page < s.cfg.MaxPages; page++ {
		var response saraminResponse
		if err := s.getJSON(ctx, s.pageURL(page), nil, &response); err != nil {
			return Result{}, err
		}
		if response.Jobs == nil {
			return Result{}, newAdapterError(s.source, KindSchema, nil, "response has no jobs root")
		}

		jobs, skipped := decodeItems[saraminJob](s.source, response.Jobs.Job)
		result.Skipped += skipped

		for _, job := range jobs {
			posting, ok := s.toRawPosting(job)
			if !ok {
				result.Skipped++
				continue
			}
			result.Postings = append(result.Postings, posting)
		}

		total, _ := strconv.Atoi(response.Jobs.Total)
		if len(response.Jobs.Job) < s.cfg.PageSize || (page+1)*s.cfg.PageSize >= total {
			break
		}
	}

	return result, nil
}

func (s *Saramin) pageURL(page int) string {
	params := url.Values{}
	params.Set("access-key", s.cfg.AccessKey)
	params.Set("job_mid_cd", "2")
	params.Set("sort", "pd")
	params.Set("start", strconv.Itoa(page))
	params.Set("count", strconv.Itoa(s.cfg.PageSize))
	if s.cfg.Query != "" {
		params.Set("keywords", s.cfg.Query)
	}
	return s.cfg.URL + "?" + params.Encode()
}

func (s *Saramin) toRawPosting(job saraminJob) (entities.RawPosting, bool) {
	title := strings.TrimSpace(job.Position.Title)
	company := strings.TrimSpace(job.Company.Detail.Name)
	if title == "" || company == "" || job.URL == "" {
		return entities.RawPosting{}, false
	}

	deadline := job.ExpirationTimestamp
	if strings.Contains(job.CloseType.Name, "상시") || strings.Contains(job.CloseType.Name, "채용시") {
		deadline = job.CloseType.Name
	}

	return entities.RawPosting{
		Source:       s.source,
		SourceKind:   s.kind,
		SourceID:     job.ID,
		URL:          job.URL,
		Title:        title,
		Company:      company,
		Location:     htmlText(job.Position.Location.Name),
		Salary:       job.Salary.Name,
		Experience:   job.Position.ExperienceLevel.Name,
		Skills:       splitList(job.Keyword),
		Deadline:     deadline,
		PostedAt:     job.PostingTimestamp,
		CategoryHint: job.Position.JobCode.Name,
		FetchedAt:    s.now(),
	}, true
}

func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
