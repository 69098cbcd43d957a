package sources

import (
	"context"
	"testing"

	"github.com/maxaizer/jobs-collector/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func Test_RSS_Fetch_SplitsCompanyFromTitle(t *testing.T) {
	client := &mockHTTPClient{}
	client.On("Do", mock.Anything).Return(fileResponse(t, "remote_jobs.rss"), nil).Once()

	adapter := NewRSS(config.SourceConfig{Name: "remote", URL: "https://remote-jobs.example.com/feed.rss", CategoryHint: "backend"})
	prepare(adapter, &adapter.fetcher, client)

	result, err := adapter.Fetch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Postings, 2)

	golang := result.Postings[0]
	assert.Equal(t, "Senior Go Engineer", golang.Title)
	assert.Equal(t, "Acme Corp", golang.Company)
	assert.Equal(t, "Anywhere in the World", golang.Location)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, golang.Skills)
	assert.Equal(t, "We build distributed systems in Go and Kubernetes.", golang.Description)
	assert.Equal(t, "2024-10-14T09:00:00Z", golang.PostedAt)
	assert.Equal(t, "https://remote-jobs.example.com/jobs/101", golang.SourceID)
	assert.Contains(t, golang.Remote, "Anywhere")

	frontend := result.Postings[1]
	assert.Equal(t, "Frontend Developer (React)", frontend.Title)
	assert.Equal(t, "Globex", frontend.Company)
	assert.Equal(t, "https://remote-jobs.example.com/jobs/103", frontend.SourceID)
}

func Test_RSS_Fetch_NotAFeed_ReturnsSchemaError(t *testing.T) {
	client := &mockHTTPClient{}
	client.On("Do", mock.Anything).Return(bodyResponse("plain text, no feed"), nil).Once()

	adapter := NewRSS(config.SourceConfig{Name: "remote", URL: "https://remote-jobs.example.com/feed.rss"})
	prepare(adapter, &adapter.fetcher, client)

	_, err := adapter.Fetch(context.Background())

	var adapterErr *AdapterError
	require.ErrorAs(t, err, &adapterErr)
	assert.Equal(t, KindSchema, adapterErr.Kind)
}
