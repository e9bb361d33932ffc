package clients

import (
	"context"
	"creatorstats/internal/models"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ytBase = "https://yt.test/v3"

var ytConfig = models.YouTubeConfig{APIKey: "key-1", ChannelID: "UC123"}

const ytChannelBody = `{"items":[{"id":"UC123","snippet":{"title":"My Channel"},
"statistics":{"viewCount":"1800000","subscriberCount":"14100","videoCount":"89"}}]}`

const ytSearchBody = `{"items":[
{"id":{"videoId":"v1"},"snippet":{"title":"First","publishedAt":"2024-03-01T10:00:00Z","thumbnails":{"medium":{"url":"https://img/1"}}}},
{"id":{"videoId":"v2"},"snippet":{"title":"Second","publishedAt":"2024-02-20T10:00:00Z","thumbnails":{"medium":{"url":"https://img/2"}}}}]}`

const ytVideosBody = `{"items":[
{"id":"v1","statistics":{"viewCount":"100","likeCount":"10","commentCount":"2"},"contentDetails":{"duration":"PT4M"}},
{"id":"v2","statistics":{"viewCount":"200","likeCount":"20","commentCount":"4"},"contentDetails":{"duration":"PT8M"}}]}`

func TestYouTubeClient_FetchStats(t *testing.T) {
	client, transport := newMockHTTP()
	transport.RegisterResponder("GET", ytBase+"/channels",
		func(req *http.Request) (*http.Response, error) {
			q := req.URL.Query()
			assert.Equal(t, "statistics,snippet", q.Get("part"))
			assert.Equal(t, "UC123", q.Get("id"))
			assert.Equal(t, "key-1", q.Get("key"))
			return httpmock.NewStringResponse(200, ytChannelBody), nil
		})

	yt := NewYouTubeClient(ytBase, client)
	snap, err := yt.FetchStats(context.Background(), ytConfig, OpenGate{})

	require.NoError(t, err)
	assert.Equal(t, models.PlatformYouTube, snap.Platform)
	assert.Equal(t, "My Channel", snap.DisplayName)
	assert.Equal(t, int64(14100), snap.FollowerCount)
	assert.Equal(t, int64(1800000), snap.ViewCount)
	assert.Equal(t, int64(89), snap.ContentCount)
}

func TestYouTubeClient_FetchStats_UnknownChannel(t *testing.T) {
	client, transport := newMockHTTP()
	transport.RegisterResponder("GET", ytBase+"/channels",
		httpmock.NewStringResponder(200, `{"items":[]}`))

	yt := NewYouTubeClient(ytBase, client)
	_, err := yt.FetchStats(context.Background(), ytConfig, OpenGate{})

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestYouTubeClient_FetchRecentItems_LoadsStatistics(t *testing.T) {
	client, transport := newMockHTTP()
	transport.RegisterResponder("GET", ytBase+"/search",
		httpmock.NewStringResponder(200, ytSearchBody))
	transport.RegisterResponder("GET", ytBase+"/videos",
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "v1,v2", req.URL.Query().Get("id"))
			return httpmock.NewStringResponse(200, ytVideosBody), nil
		})

	gate := &budgetGate{left: 4}
	items, err := NewYouTubeClient(ytBase, client).FetchRecentItems(context.Background(), ytConfig, 5, gate)

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "First", items[0].Title)
	assert.Equal(t, int64(100), items[0].ViewCount)
	assert.Equal(t, int64(12), items[0].Engagement())
	assert.Equal(t, "PT8M", items[1].Duration)
	assert.Len(t, gate.recorded, 2)
}

func TestYouTubeClient_FetchRecentItems_SkipsStatisticsWhenBudgetSpent(t *testing.T) {
	client, transport := newMockHTTP()
	transport.RegisterResponder("GET", ytBase+"/search",
		httpmock.NewStringResponder(200, ytSearchBody))
	transport.RegisterResponder("GET", ytBase+"/videos",
		httpmock.NewStringResponder(200, ytVideosBody))

	gate := &budgetGate{left: 1}
	items, err := NewYouTubeClient(ytBase, client).FetchRecentItems(context.Background(), ytConfig, 5, gate)

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Zero(t, items[0].ViewCount)
	assert.Equal(t, "PT0S", items[0].Duration)
	assert.Equal(t, 1, transport.GetTotalCallCount())
}

func TestYouTubeClient_Missing(t *testing.T) {
	yt := NewYouTubeClient("", http.DefaultClient)
	assert.Equal(t, []string{"apiKey", "channelId"}, yt.Missing(models.YouTubeConfig{}))
	assert.Empty(t, yt.Missing(ytConfig))
}

func TestYouTubeClient_Synthetic(t *testing.T) {
	snap, items := NewYouTubeClient("", http.DefaultClient).Synthetic(models.YouTubeConfig{})
	assert.Equal(t, int64(12400), snap.FollowerCount)
	assert.Equal(t, int64(1800000), snap.ViewCount)
	assert.Equal(t, int64(89), snap.ContentCount)
	assert.Len(t, items, 2)
}
