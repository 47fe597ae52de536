package headless

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/weather-lookup/internal/weather"
)

func TestNewChromedpValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewChromedp(Config{MaxParallel: -1}, nil); err == nil {
		t.Fatal("expected error for negative max parallel")
	}
	fetcher, err := NewChromedp(Config{MaxParallel: 2, Settle: -time.Second}, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, 2, cap(fetcher.limiter))
	require.Equal(t, defaultNavTimeout, fetcher.cfg.NavigationTimeout)
	require.Zero(t, fetcher.cfg.Settle)

	unlimited, err := NewChromedp(Config{}, nil)
	require.NoError(t, err)
	require.Nil(t, unlimited.limiter)
}

func TestFetcherNavTimeoutDefault(t *testing.T) {
	t.Parallel()

	fetcher := &Fetcher{}
	require.Equal(t, defaultNavTimeout, fetcher.navTimeout())
	fetcher.cfg.NavigationTimeout = time.Second
	require.Equal(t, time.Second, fetcher.navTimeout())
}

func TestAcquireHonorsContext(t *testing.T) {
	t.Parallel()

	fetcher, err := NewChromedp(Config{MaxParallel: 1}, nil)
	require.NoError(t, err)
	require.NoError(t, fetcher.acquire(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, fetcher.acquire(ctx), context.Canceled)

	fetcher.release()
	require.NoError(t, fetcher.acquire(context.Background()))
	fetcher.release()
	fetcher.release()
}

func TestAllocatorOptionsExecPath(t *testing.T) {
	t.Parallel()

	plain := &Fetcher{}
	custom := &Fetcher{cfg: Config{ExecPath: "/opt/chrome/chrome"}}
	require.Len(t, custom.allocatorOptions(), len(plain.allocatorOptions())+1)
}

func TestToNetworkHeaders(t *testing.T) {
	t.Parallel()

	src := http.Header{"Referer": {"https://www.theweathernetwork.com/us/"}, "X-Empty": {}}
	got := toNetworkHeaders(src)
	require.Equal(t, network.Headers{"Referer": "https://www.theweathernetwork.com/us/"}, got)
}

func TestResponseMetaCaptureAndFallbacks(t *testing.T) {
	t.Parallel()

	meta := newResponseMeta()
	meta.captureEvent(&network.EventResponseReceived{
		Type: network.ResourceTypeDocument,
		Response: &network.Response{
			Status:  203,
			URL:     "https://example.com/rendered",
			Headers: network.Headers{"X-Request-ID": "abc"},
		},
	})
	meta.captureEvent(&network.EventResponseReceived{
		Type:     network.ResourceTypeDocument,
		Response: &network.Response{Status: 500, URL: "https://ads.example.com/frame"},
	})
	meta.captureEvent(&network.EventResponseReceived{
		Type:     network.ResourceTypeScript,
		Response: &network.Response{Status: 404},
	})
	status, headers, url := meta.snapshotWithFallbacks("https://req", "")
	require.Equal(t, 203, status)
	require.Equal(t, "abc", headers.Get("X-Request-ID"))
	require.Equal(t, "https://example.com/rendered", url)

	meta = newResponseMeta()
	status, _, url = meta.snapshotWithFallbacks("https://req", "https://final")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "https://final", url)

	_, _, url = newResponseMeta().snapshotWithFallbacks("https://req", "")
	require.Equal(t, "https://req", url)
}

// TestFetchRendersScriptContent needs a local Chrome; it skips otherwise.
func TestFetchRendersScriptContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<!doctype html><html><body><script>
document.body.innerHTML = '<span class="temp">55</span><div class="unitwrap">°F</div>';
</script></body></html>`)
	}))
	defer srv.Close()

	fetcher, err := NewChromedp(Config{NavigationTimeout: 10 * time.Second, Settle: 100 * time.Millisecond}, zap.NewNop())
	require.NoError(t, err)

	resp, err := fetcher.Fetch(context.Background(), weather.FetchRequest{URL: srv.URL})
	if err != nil {
		t.Skipf("chromedp unavailable: %v", err)
	}
	require.True(t, resp.UsedHeadless)
	require.True(t, strings.Contains(string(resp.Body), `class="temp"`), "rendered body missing dynamic content")
}
