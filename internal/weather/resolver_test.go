package weather

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testOrigin = "https://www.theweathernetwork.com"

func testResolverConfig() ResolverConfig {
	return ResolverConfig{
		Origin:         testOrigin,
		SearchTemplate: "/us/search?q=%s&lat=&lon=",
		Referer:        testOrigin + "/us/",
		Exclude:        []string{"airport"},
	}
}

func searchPage(items ...string) string {
	body := `<html><body><ul class="results">`
	for _, item := range items {
		body += item
	}
	return body + `</ul></body></html>`
}

func TestNewResolverValidation(t *testing.T) {
	t.Parallel()

	fetcher := &pageFetcher{}
	_, err := NewResolver(testResolverConfig(), nil, nil)
	require.Error(t, err)

	cfg := testResolverConfig()
	cfg.Origin = "/relative"
	_, err = NewResolver(cfg, fetcher, nil)
	require.ErrorContains(t, err, "must be absolute")

	cfg = testResolverConfig()
	cfg.SearchTemplate = "/us/search"
	_, err = NewResolver(cfg, fetcher, nil)
	require.ErrorContains(t, err, "search template")
}

func TestResolverSearchURL(t *testing.T) {
	t.Parallel()

	r, err := NewResolver(testResolverConfig(), &pageFetcher{}, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t,
		"https://www.theweathernetwork.com/us/search?q=new+york&lat=&lon=",
		r.SearchURL("new york"),
	)
	require.Equal(t,
		"https://www.theweathernetwork.com/us/search?q=Atlanta%2C+GA&lat=&lon=",
		r.SearchURL("Atlanta, GA"),
	)
}

func TestResolveSendsHostAndReferer(t *testing.T) {
	t.Parallel()

	fetcher := new(MockFetcher)
	r, err := NewResolver(testResolverConfig(), fetcher, zap.NewNop())
	require.NoError(t, err)

	fetcher.On("Fetch", mock.Anything, mock.MatchedBy(func(req FetchRequest) bool {
		return req.URL == r.SearchURL("atlanta") &&
			req.Headers.Get("Host") == "www.theweathernetwork.com" &&
			req.Headers.Get("Referer") == testOrigin+"/us/"
	})).Return(FetchResponse{StatusCode: 200, Body: []byte(searchPage(
		`<li class="result"><a href="/us/weather/georgia/atlanta">Atlanta, Georgia</a></li>`,
	))}, nil)

	res, err := r.Resolve(context.Background(), "atlanta")
	require.NoError(t, err)
	require.True(t, res.Found)
	require.Equal(t, testOrigin+"/us/weather/georgia/atlanta", res.URL)
	fetcher.AssertExpectations(t)
}

func TestResolveMatching(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		query   string
		page    string
		wantURL string
	}{
		{
			name:  "case insensitive substring",
			query: "ATLANTA",
			page: searchPage(
				`<li class="result"><a href="/us/weather/illinois/chicago">Chicago, Illinois</a></li>`,
				`<li class="result"><a href="/us/weather/georgia/atlanta">Atlanta, Georgia</a></li>`,
			),
			wantURL: testOrigin + "/us/weather/georgia/atlanta",
		},
		{
			name:  "first document order match wins",
			query: "portland",
			page: searchPage(
				`<li class="result"><a href="/us/weather/oregon/portland">Portland, Oregon</a></li>`,
				`<li class="result"><a href="/us/weather/maine/portland">Portland, Maine</a></li>`,
			),
			wantURL: testOrigin + "/us/weather/oregon/portland",
		},
		{
			name:  "city component only",
			query: "Portland, Maine",
			page: searchPage(
				`<li class="result"><a href="/us/weather/oregon/portland">Portland, Oregon</a></li>`,
			),
			wantURL: testOrigin + "/us/weather/oregon/portland",
		},
		{
			name:  "airport skipped",
			query: "chicago",
			page: searchPage(
				`<li class="result"><a href="/us/weather/illinois/chicago-ohare-airport">Chicago O'Hare Airport</a></li>`,
				`<li class="result"><a href="/us/weather/illinois/chicago">Chicago, Illinois</a></li>`,
			),
			wantURL: testOrigin + "/us/weather/illinois/chicago",
		},
		{
			name:  "match without anchor keeps scanning",
			query: "denver",
			page: searchPage(
				`<li class="result"><span>Denver (no link)</span></li>`,
				`<li class="result"><div><a href="/us/weather/colorado/denver">Denver,
					Colorado</a></div></li>`,
			),
			wantURL: testOrigin + "/us/weather/colorado/denver",
		},
		{
			name:  "text split across elements",
			query: "new york",
			page: searchPage(
				`<li class="result"><a href="/us/weather/new-york/new-york"><b>New</b>
					<b>York</b>, NY</a></li>`,
			),
			wantURL: testOrigin + "/us/weather/new-york/new-york",
		},
		{
			name:  "off-origin href skipped",
			query: "miami",
			page: searchPage(
				`<li class="result"><a href="https://cdn.example.com/us/weather/florida/miami">Miami</a></li>`,
				`<li class="result"><a href="`+testOrigin+`/us/weather/florida/miami">Miami, FL</a></li>`,
			),
			wantURL: testOrigin + "/us/weather/florida/miami",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fetcher := &pageFetcher{}
			r, err := NewResolver(testResolverConfig(), fetcher, zap.NewNop())
			require.NoError(t, err)
			fetcher.pages = map[string]string{r.SearchURL(tt.query): tt.page}

			res, err := r.Resolve(context.Background(), tt.query)
			require.NoError(t, err)
			require.True(t, res.Found)
			require.Equal(t, tt.wantURL, res.URL)
			require.Equal(t, tt.query, res.Query)
		})
	}
}

func TestResolveNotFound(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"no results": searchPage(),
		"no text match": searchPage(
			`<li class="result"><a href="/us/weather/georgia/atlanta">Atlanta, Georgia</a></li>`,
		),
		"only airports": searchPage(
			`<li class="result"><a href="/us/weather/texas/houston-AIRPORT">Houston Hobby</a></li>`,
			`<li class="result"><a href="/us/weather/texas/houston-intercontinental-airport">Houston Intl</a></li>`,
		),
		"not a result element": `<html><body><div class="result"><a href="/us/weather/texas/houston">Houston</a></div></body></html>`,
	}

	for name, page := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			fetcher := &pageFetcher{}
			r, err := NewResolver(testResolverConfig(), fetcher, zap.NewNop())
			require.NoError(t, err)
			fetcher.pages = map[string]string{r.SearchURL("houston"): page}

			res, err := r.Resolve(context.Background(), "houston")
			require.NoError(t, err)
			require.False(t, res.Found)
			require.Empty(t, res.URL)
		})
	}
}

func TestResolveFetchFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection reset")
	r, err := NewResolver(testResolverConfig(), &pageFetcher{err: boom}, zap.NewNop())
	require.NoError(t, err)

	_, err = r.Resolve(context.Background(), "atlanta")
	require.ErrorIs(t, err, boom)
	require.ErrorContains(t, err, "fetch search page")
}

func TestResolverWithoutExclusions(t *testing.T) {
	t.Parallel()

	cfg := testResolverConfig()
	cfg.Exclude = []string{" ", ""}
	fetcher := &pageFetcher{}
	r, err := NewResolver(cfg, fetcher, zap.NewNop())
	require.NoError(t, err)
	fetcher.pages = map[string]string{r.SearchURL("boston"): searchPage(
		`<li class="result"><a href="/us/weather/massachusetts/boston-logan-airport">Boston Logan</a></li>`,
	)}

	res, err := r.Resolve(context.Background(), "boston")
	require.NoError(t, err)
	require.True(t, res.Found)
	require.Contains(t, res.URL, "airport")
}
