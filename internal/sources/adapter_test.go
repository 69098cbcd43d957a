package sources

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/maxaizer/jobs-collector/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fetchedAt = time.Date(2024, 10, 15, 9, 0, 0, 0, time.UTC)

type mockHTTPClient struct {
	mock.Mock
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	resp, _ := args.Get(0).(*http.Response)
	return resp, args.Error(1)
}

func fileResponse(t *testing.T, name string) *http.Response {
	t.Helper()
	file, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewBuffer(file))}
}

func statusResponse(code int) *http.Response {
	return &http.Response{StatusCode: code, Body: io.NopCloser(bytes.NewBufferString("error"))}
}

func bodyResponse(body string) *http.Response {
	return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewBufferString(body))}
}

type testable interface {
	SetHTTPClient(client HTTPClient)
	SetRetryDelay(delay time.Duration)
}

// prepare swaps in the mock transport and a fixed clock.
func prepare(adapter testable, f *fetcher, client *mockHTTPClient) {
	adapter.SetHTTPClient(client)
	adapter.SetRetryDelay(0)
	f.now = func() time.Time { return fetchedAt }
}

func Test_Build_ConstructsEnabledAdaptersInOrder(t *testing.T) {
	adapters, err := Build([]config.SourceConfig{
		{Name: "wanted", Kind: config.SourceWanted, Enabled: true},
		{Name: "off", Kind: config.SourceJumpit, Enabled: false},
		{Name: "feed", Kind: config.SourceRSS, Enabled: true, URL: "https://example.com/rss"},
	})

	require.NoError(t, err)
	require.Len(t, adapters, 2)
	assert.Equal(t, "wanted", adapters[0].Name())
	assert.Equal(t, "feed", adapters[1].Name())
}

func Test_Build_UnknownKind_ReturnsConfigError(t *testing.T) {
	_, err := Build([]config.SourceConfig{{Name: "ftp", Kind: "ftp", Enabled: true}})

	var adapterErr *AdapterError
	require.ErrorAs(t, err, &adapterErr)
	assert.Equal(t, KindConfig, adapterErr.Kind)
	assert.Equal(t, "ftp", adapterErr.Source)
}

func Test_Build_InvalidCareersConfig_ReturnsConfigError(t *testing.T) {
	_, err := Build([]config.SourceConfig{{Name: "toss", Kind: config.SourceCareers, Enabled: true, URL: "https://toss.im"}})

	var adapterErr *AdapterError
	require.ErrorAs(t, err, &adapterErr)
	assert.Equal(t, KindConfig, adapterErr.Kind)
}

func Test_Kinds_ListsRegistry(t *testing.T) {
	assert.Equal(t, []string{"careers", "jsonfeed", "jumpit", "rss", "saramin", "wanted"}, Kinds())
}

func Test_Fetch_Unauthorized_ReturnsAuthError(t *testing.T) {
	client := &mockHTTPClient{}
	client.On("Do", mock.Anything).Return(statusResponse(http.StatusUnauthorized), nil).Once()
	adapter := NewSaramin(config.SourceConfig{Name: "saramin", AccessKey: "bad"})
	prepare(adapter, &adapter.fetcher, client)

	_, err := adapter.Fetch(context.Background())

	var adapterErr *AdapterError
	require.ErrorAs(t, err, &adapterErr)
	assert.Equal(t, KindAuth, adapterErr.Kind)
	client.AssertNumberOfCalls(t, "Do", 1)
}

func Test_Fetch_ServerError_RetriedThenTransportError(t *testing.T) {
	client := &mockHTTPClient{}
	client.On("Do", mock.Anything).Return(statusResponse(http.StatusBadGateway), nil).Once()
	client.On("Do", mock.Anything).Return(statusResponse(http.StatusServiceUnavailable), nil).Once()
	client.On("Do", mock.Anything).Return(statusResponse(http.StatusInternalServerError), nil).Once()
	adapter := NewJumpit(config.SourceConfig{Name: "jumpit"})
	prepare(adapter, &adapter.fetcher, client)

	_, err := adapter.Fetch(context.Background())

	var adapterErr *AdapterError
	require.ErrorAs(t, err, &adapterErr)
	assert.Equal(t, KindTransport, adapterErr.Kind)
	client.AssertNumberOfCalls(t, "Do", 3)
}

func Test_Fetch_CanceledDuringRetryDelay_StopsWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := &mockHTTPClient{}
	client.On("Do", mock.Anything).Return(statusResponse(http.StatusBadGateway), nil).Once()
	adapter := NewJumpit(config.SourceConfig{Name: "jumpit"})
	prepare(adapter, &adapter.fetcher, client)
	adapter.SetRetryDelay(time.Minute)
	time.AfterFunc(50*time.Millisecond, cancel)

	start := time.Now()
	_, err := adapter.Fetch(ctx)

	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, KindCanceled, AsAdapterError("jumpit", err).Kind)
	client.AssertNumberOfCalls(t, "Do", 1)
}

func Test_Fetch_ServerErrorThenSuccess_Recovers(t *testing.T) {
	client := &mockHTTPClient{}
	client.On("Do", mock.Anything).Return(statusResponse(http.StatusInternalServerError), nil).Once()
	client.On("Do", mock.Anything).Return(fileResponse(t, "jumpit_positions.json"), nil).Once()
	adapter := NewJumpit(config.SourceConfig{Name: "jumpit", PageSize: 16})
	prepare(adapter, &adapter.fetcher, client)

	result, err := adapter.Fetch(context.Background())

	require.NoError(t, err)
	assert.Len(t, result.Postings, 2)
}

func Test_Fetch_NotFound_NotRetried(t *testing.T) {
	client := &mockHTTPClient{}
	client.On("Do", mock.Anything).Return(statusResponse(http.StatusNotFound), nil).Once()
	adapter := NewRSS(config.SourceConfig{Name: "feed", URL: "https://example.com/rss"})
	prepare(adapter, &adapter.fetcher, client)

	_, err := adapter.Fetch(context.Background())

	var adapterErr *AdapterError
	require.ErrorAs(t, err, &adapterErr)
	assert.Equal(t, KindTransport, adapterErr.Kind)
	client.AssertNumberOfCalls(t, "Do", 1)
}

func Test_Fetch_UnexpectedRoot_ReturnsSchemaError(t *testing.T) {
	client := &mockHTTPClient{}
	client.On("Do", mock.Anything).Return(bodyResponse(`{"code": 3, "message": "maintenance"}`), nil).Once()
	adapter := NewWanted(config.SourceConfig{Name: "wanted"})
	prepare(adapter, &adapter.fetcher, client)

	_, err := adapter.Fetch(context.Background())

	var adapterErr *AdapterError
	require.ErrorAs(t, err, &adapterErr)
	assert.Equal(t, KindSchema, adapterErr.Kind)
}

func Test_Fetch_InvalidJSON_ReturnsSchemaError(t *testing.T) {
	client := &mockHTTPClient{}
	client.On("Do", mock.Anything).Return(bodyResponse(`<html>blocked</html>`), nil).Once()
	adapter := NewJumpit(config.SourceConfig{Name: "jumpit"})
	prepare(adapter, &adapter.fetcher, client)

	_, err := adapter.Fetch(context.Background())

	var adapterErr *AdapterError
	require.ErrorAs(t, err, &adapterErr)
	assert.Equal(t, KindSchema, adapterErr.Kind)
}

func Test_AsAdapterError_MapsContextErrors(t *testing.T) {
	timeout := AsAdapterError("wanted", newAdapterError("wanted", KindTransport, context.DeadlineExceeded, "error sending request"))
	canceled := AsAdapterError("wanted", context.Canceled)
	schema := AsAdapterError("wanted", newAdapterError("wanted", KindSchema, nil, "bad root"))

	assert.Equal(t, KindTimeout, timeout.Kind)
	assert.Equal(t, KindCanceled, canceled.Kind)
	assert.Equal(t, KindSchema, schema.Kind)
	assert.Nil(t, AsAdapterError("wanted", nil))
}
