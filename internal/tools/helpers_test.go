package tools

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/blinxlabs/blinx/internal/config"
	"github.com/blinxlabs/blinx/internal/schema"
)

const testMint = "So11111111111111111111111111111111111111112"

// countingServer serves body with status and counts every request it sees.
type countingServer struct {
	*httptest.Server
	calls    atomic.Int32
	lastBody atomic.Value
}

func newCountingServer(t *testing.T, status int, body string) *countingServer {
	t.Helper()
	cs := &countingServer{}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs.calls.Add(1)
		data, _ := io.ReadAll(r.Body)
		cs.lastBody.Store(string(data))
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(cs.Close)
	return cs
}

func (cs *countingServer) body() string {
	s, _ := cs.lastBody.Load().(string)
	return s
}

func bitqueryConfig(endpoint string) config.BitqueryConfig {
	return config.BitqueryConfig{APIKey: "bq-test", Endpoint: endpoint}
}

// decodeStatus parses an encoded result as a Status object.
func decodeStatus(t *testing.T, r schema.Result) schema.Status {
	t.Helper()
	var st schema.Status
	if err := json.Unmarshal([]byte(r.Encode()), &st); err != nil {
		t.Fatalf("output %s is not a status object: %v", r.Encode(), err)
	}
	return st
}

// decodeList parses an encoded result as a JSON array.
func decodeList(t *testing.T, r schema.Result) []map[string]any {
	t.Helper()
	var list []map[string]any
	if err := json.Unmarshal([]byte(r.Encode()), &list); err != nil {
		t.Fatalf("output %s is not a list: %v", r.Encode(), err)
	}
	return list
}
