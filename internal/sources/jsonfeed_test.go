package sources

import (
	"context"
	"testing"

	"github.com/maxaizer/jobs-collector/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func jsonFeedConfig() config.SourceConfig {
	return config.SourceConfig{
		Name: "custom",
		Kind: config.SourceJSONFeed,
		URL:  "https://jobs.example.com/api/feed.json",
		Fields: map[string]string{
			"root":           "data.jobs",
			"title":          "position",
			"company":        "company.name",
			"company_domain": "company.website",
			"url":            "link",
			"location":       "office",
			"salary":         "pay",
			"skills":         "tags",
			"posted_at":      "published",
		},
	}
}

func Test_JSONFeed_Fetch_AppliesFieldMapping(t *testing.T) {
	client := &mockHTTPClient{}
	client.On("Do", mock.Anything).Return(fileResponse(t, "custom_feed.json"), nil).Once()

	adapter, err := NewJSONFeed(jsonFeedConfig())
	require.NoError(t, err)
	prepare(adapter, &adapter.fetcher, client)

	result, err := adapter.Fetch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, result.Skipped)
	require.Len(t, result.Postings, 1)

	posting := result.Postings[0]
	assert.Equal(t, "7001", posting.SourceID)
	assert.Equal(t, "Platform Engineer", posting.Title)
	assert.Equal(t, "Hyperconnect", posting.Company)
	assert.Equal(t, "https://hyperconnect.com", posting.CompanyDomain)
	assert.Equal(t, "https://jobs.example.com/jobs/7001", posting.URL)
	assert.Equal(t, "Seoul, Korea", posting.Location)
	assert.Equal(t, "$120k - $150k", posting.Salary)
	assert.Equal(t, []string{"Kubernetes", "Go", "Terraform"}, posting.Skills)
	assert.Equal(t, "remote", posting.Remote)
	assert.Equal(t, "2024-10-14T09:00:00Z", posting.PostedAt)
}

func Test_JSONFeed_Fetch_RootNotArray_ReturnsSchemaError(t *testing.T) {
	client := &mockHTTPClient{}
	client.On("Do", mock.Anything).Return(bodyResponse(`{"data": {"jobs": {"count": 0}}}`), nil).Once()

	adapter, err := NewJSONFeed(jsonFeedConfig())
	require.NoError(t, err)
	prepare(adapter, &adapter.fetcher, client)

	_, err = adapter.Fetch(context.Background())

	var adapterErr *AdapterError
	require.ErrorAs(t, err, &adapterErr)
	assert.Equal(t, KindSchema, adapterErr.Kind)
}

func Test_NewJSONFeed_RequiresURL(t *testing.T) {
	_, err := NewJSONFeed(config.SourceConfig{Name: "custom"})

	assert.Error(t, err)
}
