package chromedp_fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChromedpFetcher_Defaults(t *testing.T) {
	f := NewChromedpFetcher(30*time.Second, nil, nil)
	assert.NotNil(t, f.logger)
	assert.Equal(t, 30*time.Second, f.timeout)
}

// Needs a local Chrome; set LINKCARD_CHROME_TESTS=1 to run.
func TestChromedpFetcher_Fetch(t *testing.T) {
	if os.Getenv("LINKCARD_CHROME_TESTS") == "" {
		t.Skip("LINKCARD_CHROME_TESTS not set")
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><script>document.title = "Scripted"</script></head><body></body></html>`)
	}))
	defer server.Close()

	html, err := NewChromedpFetcher(30*time.Second, nil, nil).Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, html, "<title>Scripted</title>")
}
