package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/blinxlabs/blinx/internal/config"
)

func TestMarketcap_ReturnsFirstPairScalar(t *testing.T) {
	var path atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path.Store(r.URL.EscapedPath())
		_, _ = w.Write([]byte(`[
			{"baseToken":{"address":"AAA","name":"Alpha","symbol":"A"},"marketCap":1500000},
			{"baseToken":{"address":"BBB","name":"Beta","symbol":"B"},"marketCap":2500}
		]`))
	}))
	defer srv.Close()

	tool := NewMarketcapTool(config.DexScreenerConfig{Endpoint: srv.URL + "/"}, srv.Client())
	res := tool.Invoke(context.Background(), map[string]any{"count": 2, "term": " AAA , BBB ,"})
	if !res.OK() {
		t.Fatalf("expected success, got %s", res.Encode())
	}
	if got := res.Encode(); got != "1500000" {
		t.Errorf("expected scalar market cap, got %s", got)
	}
	if got, _ := path.Load().(string); got != "/tokens/v1/solana/AAA,BBB" {
		t.Errorf("unexpected request path %q", got)
	}
}

func TestMarketcap_ClampsCount(t *testing.T) {
	var path atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path.Store(r.URL.Path)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	terms := make([]string, 40)
	for i := range terms {
		terms[i] = "T" + strings.Repeat("x", i+1)
	}

	tool := NewMarketcapTool(config.DexScreenerConfig{Endpoint: srv.URL}, srv.Client())
	tool.Invoke(context.Background(), map[string]any{"count": 100, "term": strings.Join(terms, ",")})

	got, _ := path.Load().(string)
	parts := strings.Split(strings.TrimPrefix(got, "/tokens/v1/solana/"), ",")
	if len(parts) != marketcapMaxTokens {
		t.Errorf("expected %d addresses, got %d", marketcapMaxTokens, len(parts))
	}
}

func TestMarketcap_Empty(t *testing.T) {
	srv := newCountingServer(t, http.StatusOK, `[]`)
	tool := NewMarketcapTool(config.DexScreenerConfig{Endpoint: srv.URL}, srv.Client())

	st := decodeStatus(t, tool.Invoke(context.Background(), map[string]any{"count": 1, "term": "ZZZ"}))
	if !st.Success || st.Message != `No results found for term: "ZZZ"` {
		t.Errorf("unexpected empty shape: %+v", st)
	}
}

func TestMarketcap_Failures(t *testing.T) {
	t.Run("non-2xx", func(t *testing.T) {
		srv := newCountingServer(t, http.StatusTooManyRequests, `slow down`)
		tool := NewMarketcapTool(config.DexScreenerConfig{Endpoint: srv.URL}, srv.Client())

		st := decodeStatus(t, tool.Invoke(context.Background(), map[string]any{"count": 1, "term": "AAA"}))
		if st.Success || !strings.HasPrefix(st.Message, "Fetch failed: ") || !strings.Contains(st.Message, "429") {
			t.Errorf("unexpected failure shape: %+v", st)
		}
	})

	t.Run("invalid arguments make no call", func(t *testing.T) {
		srv := newCountingServer(t, http.StatusOK, `[]`)
		tool := NewMarketcapTool(config.DexScreenerConfig{Endpoint: srv.URL}, srv.Client())

		for _, args := range []map[string]any{
			{"count": 0, "term": "AAA"},
			{"count": 1, "term": " , "},
		} {
			if res := tool.Invoke(context.Background(), args); res.OK() {
				t.Errorf("args %v: expected failure", args)
			}
		}
		if n := srv.calls.Load(); n != 0 {
			t.Errorf("expected no requests, got %d", n)
		}
	})
}

func TestFormatMarketcap(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{12_000_000, "12M"},
		{340_000, "340K"},
		{999, "999"},
	}
	for _, tt := range tests {
		if got := formatMarketcap(tt.in); got != tt.want {
			t.Errorf("formatMarketcap(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
