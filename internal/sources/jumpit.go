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
	jumpitURL         = "https://jumpit-api.saramin.co.kr/api/positions"
	jumpitPositionURL = "https://www.jumpit.co.kr/position/"
)

type jumpitPosition struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	CompanyName string   `json:"companyName"`
	JobCategory string   `json:"jobCategory"`
	TechStacks  []string `json:"techStacks"`
	Locations   []string `json:"locations"`
	Newcomer    bool     `json:"newcomer"`
	MinCareer   int      `json:"minCareer"`
	MaxCareer   int      `json:"maxCareer"`
	AlwaysOpen  bool     `json:"alwaysOpen"`
	ClosedAt    string   `json:"closedAt"`
}

type jumpitResponse struct {
	Result *struct {
		TotalCount int               `json:"totalCount"`
		Positions  []json.RawMessage `json:"positions"`
	} `json:"result"`
}

// Jumpit reads the Jumpit positions API page by page.
type Jumpit struct {
	fetcher
	cfg config.SourceConfig
}

func NewJumpit(cfg config.SourceConfig) *Jumpit {
	if cfg.URL == "" {
		cfg.URL = jumpitURL
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 16
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 1
	}
	return &Jumpit{fetcher: newFetcher(cfg, config.SourceJumpit), cfg: cfg}
}

func (j *Jumpit) Fetch(ctx context.Context) (Result, error) {
	var result Result

	for page := 1; page <= j.cfg.MaxPages; page++ {
		var response jumpitResponse
		if err := j.getJSON(ctx, j.pageURL(page), nil, &response); err != nil {
			return Result{}, err
		}
		if response.Result == nil {
			return Result{}, newAdapterError(j.source, KindSchema, nil, "response has no result root")
		}

		positions, skipped := decodeItems[jumpitPosition](j.source, response.Result.Positions)
		result.Skipped += skipped

		for _, position := range positions {
			posting, ok := j.toRawPosting(position)
			if !ok {
				result.Skipped++
				continue
			}
			result.Postings = append(result.Postings, posting)
		}

		if len(response.Result.Positions) < j.cfg.PageSize || page*j.cfg.PageSize >= response.Result.TotalCount {
			break
		}
	}

	return result, nil
}

func (j *Jumpit) pageURL(page int) string {
	params := url.Values{}
	params.Set("sort", "reg_dt")
	params.Set("highlight", "false")
	params.Set("page", strconv.Itoa(page))
	params.Set("size", strconv.Itoa(j.cfg.PageSize))
	if j.cfg.Query != "" {
		params.Set("keyword", j.cfg.Query)
	}
	return j.cfg.URL + "?" + params.Encode()
}

func (j *Jumpit) toRawPosting(position jumpitPosition) (entities.RawPosting, bool) {
	title := strings.TrimSpace(position.Title)
	company := strings.TrimSpace(position.CompanyName)
	if position.ID == 0 || title == "" || company == "" {
		return entities.RawPosting{}, false
	}

	deadline := position.ClosedAt
	if position.AlwaysOpen {
		deadline = "상시채용"
	}

	return entities.RawPosting{
		Source:       j.source,
		SourceKind:   j.kind,
		SourceID:     strconv.Itoa(position.ID),
		URL:          jumpitPositionURL + strconv.Itoa(position.ID),
		Title:        title,
		Company:      company,
		Location:     strings.Join(position.Locations, ", "),
		Experience:   jumpitExperience(position),
		Skills:       position.TechStacks,
		Deadline:     deadline,
		CategoryHint: position.JobCategory,
		FetchedAt:    j.now(),
	}, true
}

func jumpitExperience(position jumpitPosition) string {
	switch {
	case position.Newcomer && position.MaxCareer == 0:
		return "신입"
	case position.Newcomer:
		return "신입·경력"
	case position.MaxCareer > 0:
		return fmt.Sprintf("경력 %d~%d년", position.MinCareer, position.MaxCareer)
	default:
		return fmt.Sprintf("경력 %d년 이상", position.MinCareer)
	}
}
