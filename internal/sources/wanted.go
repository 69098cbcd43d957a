package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/maxaizer/jobs-collector/internal/config"
	"github.com/maxaizer/jobs-collector/internal/entities"
)

const (
	wantedURL     = "https://www.wanted.co.kr/api/v4/jobs"
	wantedJobURL  = "https://www.wanted.co.kr/wd/"
	wantedDevelop = "518"
)

type wantedJob struct {
	ID       int    `json:"id"`
	Position string `json:"position"`
	Company  struct {
		Name string `json:"name"`
	} `json:"company"`
	Address struct {
		Location     string `json:"location"`
		FullLocation string `json:"full_location"`
	} `json:"address"`
	DueTime     *string `json:"due_time"`
	AnnualFrom  *int    `json:"annual_from"`
	AnnualTo    *int    `json:"annual_to"`
	CategoryTag struct {
		ID int `json:"id"`
	} `json:"category_tag"`
	SkillTags []struct {
		Title string `json:"title"`
	} `json:"skill_tags"`
}

type wantedResponse struct {
	Data  *[]json.RawMessage `json:"data"`
	Links struct {
		Next *string `json:"next"`
	} `json:"links"`
}

// Wanted reads the Wanted job list API, following links.next.
type Wanted struct {
	fetcher
	cfg config.SourceConfig
}

func NewWanted(cfg config.SourceConfig) *Wanted {
	if cfg.URL == "" {
		cfg.URL = wantedURL
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 100
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 1
	}
	return &Wanted{fetcher: newFetcher(cfg, config.SourceWanted), cfg: cfg}
}

func (w *Wanted) Fetch(ctx context.Context) (Result, error) {
	var result Result

	next := w.firstPageURL()
	for page := 0; page < w.cfg.MaxPages && next != ""; page++ {
		var response wantedResponse
		if err := w.getJSON(ctx, next, nil, &response); err != nil {
			return Result{}, err
		}
		if response.Data == nil {
			return Result{}, newAdapterError(w.source, KindSchema, nil, "response has no data root")
		}

		jobs, skipped := decodeItems[wantedJob](w.source, *response.Data)
		result.Skipped += skipped

		for _, job := range jobs {
			posting, ok := w.toRawPosting(job)
			if !ok {
				result.Skipped++
				continue
			}
			result.Postings = append(result.Postings, posting)
		}

		next = ""
		if response.Links.Next != nil {
			next = resolveURL(w.cfg.URL, *response.Links.Next)
		}
	}

	return result, nil
}

func (w *Wanted) firstPageURL() string {
	params := url.Values{}
	params.Set("country", "kr")
	params.Set("tag_type_ids", wantedDevelop)
	params.Set("job_sort", "job.latest_order")
	params.Set("locations", "all")
	params.Set("years", "-1")
	params.Set("limit", strconv.Itoa(w.cfg.PageSize))
	params.Set("offset", "0")
	if w.cfg.Query != "" {
		params.Set("query", w.cfg.Query)
	}
	return w.cfg.URL + "?" + params.Encode()
}

func (w *Wanted) toRawPosting(job wantedJob) (entities.RawPosting, bool) {
	title := strings.TrimSpace(job.Position)
	company := strings.TrimSpace(job.Company.Name)
	if job.ID == 0 || title == "" || company == "" {
		return entities.RawPosting{}, false
	}

	location := job.Address.FullLocation
	if location == "" {
		location = job.Address.Location
	}

	deadline := "상시채용"
	if job.DueTime != nil {
		deadline = *job.DueTime
	}

	skills := make([]string, 0, len(job.SkillTags))
	for _, tag := range job.SkillTags {
		skills = append(skills, tag.Title)
	}

	var hint string
	if job.CategoryTag.ID != 0 {
		hint = strconv.Itoa(job.CategoryTag.ID)
	}

	return entities.RawPosting{
		Source:       w.source,
		SourceKind:   w.kind,
		SourceID:     strconv.Itoa(job.ID),
		URL:          wantedJobURL + strconv.Itoa(job.ID),
		Title:        title,
		Company:      company,
		Location:     location,
		Experience:   wantedExperience(job.AnnualFrom, job.AnnualTo),
		Skills:       skills,
		Deadline:     deadline,
		CategoryHint: hint,
		FetchedAt:    w.now(),
	}, true
}

func wantedExperience(from, to *int) string {
	switch {
	case from == nil:
		return ""
	case *from == 0 && (to == nil || *to == 0):
		return "신입"
	case *from == 0:
		return "신입·경력"
	case to == nil || *to >= 100:
		return fmt.Sprintf("경력 %d년 이상", *from)
	default:
		return fmt.Sprintf("경력 %d~%d년", *from, *to)
	}
}
