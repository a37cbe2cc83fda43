package assistant

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/blinxlabs/blinx/internal/config"
	"github.com/blinxlabs/blinx/internal/schema"
)

// fakeAPI records requests and answers them from a path-keyed table.
type fakeAPI struct {
	mu       sync.Mutex
	requests []recordedRequest
	routes   map[string]string
	status   int
}

type recordedRequest struct {
	method string
	path   string
	body   map[string]any
}

func newFakeAPI(t *testing.T, routes map[string]string) (*fakeAPI, *OpenAIService) {
	t.Helper()
	api := &fakeAPI{routes: routes, status: http.StatusOK}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	svc := NewOpenAIService(config.OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1/"}, srv.Client())
	return api, svc
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var body map[string]any
	_ = json.Unmarshal(raw, &body)

	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{method: r.Method, path: r.URL.Path, body: body})
	status := f.status
	resp, ok := f.routes[r.Method+" "+r.URL.Path]
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":{"message":"no route","type":"invalid_request_error"}}`)
		return
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, resp)
}

func (f *fakeAPI) last() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func (f *fakeAPI) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func TestCreateAssistant_SendsFunctionTools(t *testing.T) {
	api, svc := newFakeAPI(t, map[string]string{
		"POST /v1/assistants": `{"id":"asst_1","object":"assistant"}`,
	})

	id, err := svc.CreateAssistant(context.Background(), schema.AssistantSpec{
		Name:         "Blinx",
		Model:        "gpt-4o",
		Instructions: "be brief",
		Tools: []schema.Definition{{
			Name:        "fetch_marketcap",
			Description: "market caps",
			Parameters:  json.RawMessage(`{"type":"object","properties":{"term":{"type":"string"}}}`),
		}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "asst_1" {
		t.Errorf("expected asst_1, got %q", id)
	}

	body := api.last().body
	if body["model"] != "gpt-4o" || body["name"] != "Blinx" || body["instructions"] != "be brief" {
		t.Errorf("unexpected assistant body %v", body)
	}
	tools, _ := body["tools"].([]any)
	if len(tools) != 1 {
		t.Fatalf("expected 1 tool, got %v", body["tools"])
	}
	tool, _ := tools[0].(map[string]any)
	fn, _ := tool["function"].(map[string]any)
	if tool["type"] != "function" || fn["name"] != "fetch_marketcap" {
		t.Errorf("unexpected tool %v", tool)
	}
}

func TestCreateAssistant_InvalidSchemaMakesNoCall(t *testing.T) {
	api, svc := newFakeAPI(t, nil)

	_, err := svc.CreateAssistant(context.Background(), schema.AssistantSpec{
		Model: "gpt-4o",
		Tools: []schema.Definition{{Name: "broken", Parameters: json.RawMessage(`{`)}},
	})
	if err == nil || !strings.Contains(err.Error(), "broken") {
		t.Fatalf("expected schema error naming the tool, got %v", err)
	}
	if api.count() != 0 {
		t.Errorf("expected no requests, got %d", api.count())
	}
}

func TestPostMessage(t *testing.T) {
	api, svc := newFakeAPI(t, map[string]string{
		"POST /v1/threads/thread_1/messages": `{"id":"msg_1","object":"thread.message"}`,
	})

	if err := svc.PostMessage(context.Background(), "thread_1", schema.RoleUser, "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body := api.last().body
	if body["role"] != "user" || body["content"] != "hello" {
		t.Errorf("unexpected message body %v", body)
	}
}

func TestGetRun_MapsRequiredAction(t *testing.T) {
	_, svc := newFakeAPI(t, map[string]string{
		"GET /v1/threads/thread_1/runs/run_1": `{
			"id": "run_1",
			"thread_id": "thread_1",
			"status": "requires_action",
			"required_action": {
				"type": "submit_tool_outputs",
				"submit_tool_outputs": {
					"tool_calls": [
						{"id": "call_a", "type": "function", "function": {"name": "fetch_top_holders", "arguments": "{\"mintAddress\":\"X\"}"}},
						{"id": "call_b", "type": "function", "function": {"name": "trade", "arguments": "{}"}}
					]
				}
			}
		}`,
	})

	run, err := svc.GetRun(context.Background(), "thread_1", "run_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.Status != schema.RunRequiresAction {
		t.Errorf("expected requires_action, got %q", run.Status)
	}
	if len(run.ToolCalls) != 2 {
		t.Fatalf("expected 2 tool calls, got %d", len(run.ToolCalls))
	}
	if run.ToolCalls[0].ID != "call_a" || run.ToolCalls[0].Name != "fetch_top_holders" {
		t.Errorf("unexpected first call %+v", run.ToolCalls[0])
	}
	if run.ToolCalls[0].Arguments != `{"mintAddress":"X"}` {
		t.Errorf("expected raw arguments, got %q", run.ToolCalls[0].Arguments)
	}
}

func TestCreateRun_FailedCarriesLastError(t *testing.T) {
	api, svc := newFakeAPI(t, map[string]string{
		"POST /v1/threads/thread_1/runs": `{"id":"run_2","thread_id":"thread_1","status":"failed","last_error":{"code":"rate_limit_exceeded","message":"rate_limited"}}`,
	})

	run, err := svc.CreateRun(context.Background(), "thread_1", "asst_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.Status != schema.RunFailed || run.LastError != "rate_limited" {
		t.Errorf("unexpected run %+v", run)
	}
	if api.last().body["assistant_id"] != "asst_1" {
		t.Errorf("expected assistant id in body, got %v", api.last().body)
	}
}

func TestSubmitToolOutputs(t *testing.T) {
	api, svc := newFakeAPI(t, map[string]string{
		"POST /v1/threads/thread_1/runs/run_1/submit_tool_outputs": `{"id":"run_1","thread_id":"thread_1","status":"queued"}`,
	})

	run, err := svc.SubmitToolOutputs(context.Background(), "thread_1", "run_1", []schema.ToolOutput{
		{ToolCallID: "call_a", Output: `{"success":true}`},
		{ToolCallID: "call_b", Output: `42`},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.Status != schema.RunQueued {
		t.Errorf("expected queued, got %q", run.Status)
	}

	outputs, _ := api.last().body["tool_outputs"].([]any)
	if len(outputs) != 2 {
		t.Fatalf("expected 2 outputs, got %v", api.last().body)
	}
	second, _ := outputs[1].(map[string]any)
	if second["tool_call_id"] != "call_b" || second["output"] != "42" {
		t.Errorf("unexpected output %v", second)
	}
}

func TestLatestAssistantText(t *testing.T) {
	_, svc := newFakeAPI(t, map[string]string{
		"GET /v1/threads/thread_1/messages": `{"object":"list","data":[
			{"id":"m3","role":"user","content":[{"type":"text","text":{"value":"later question","annotations":[]}}]},
			{"id":"m2","role":"assistant","content":[
				{"type":"text","text":{"value":"Top holder is X.","annotations":[]}},
				{"type":"text","text":{"value":"Anything else?","annotations":[]}}
			]},
			{"id":"m1","role":"assistant","content":[{"type":"text","text":{"value":"older","annotations":[]}}]}
		],"has_more":false}`,
		"GET /v1/threads/thread_2/messages": `{"object":"list","data":[],"has_more":false}`,
	})

	text, ok, err := svc.LatestAssistantText(context.Background(), "thread_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok || text != "Top holder is X.\nAnything else?" {
		t.Errorf("unexpected text %q (ok=%v)", text, ok)
	}

	_, ok, err = svc.LatestAssistantText(context.Background(), "thread_2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected no assistant text on an empty thread")
	}
}

func TestServiceErrorsAreNotRetried(t *testing.T) {
	api, svc := newFakeAPI(t, map[string]string{
		"POST /v1/threads": `{"error":{"message":"overloaded","type":"server_error"}}`,
	})
	api.status = http.StatusInternalServerError

	if _, err := svc.CreateThread(context.Background()); err == nil {
		t.Fatal("expected an error")
	}
	if api.count() != 1 {
		t.Errorf("expected exactly one request, got %d", api.count())
	}
}

func TestRequestsUseClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	svc := NewOpenAIService(
		config.OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1/"},
		&http.Client{Timeout: 50 * time.Millisecond},
	)

	start := time.Now()
	if _, err := svc.CreateThread(context.Background()); err == nil {
		t.Fatal("expected a timeout error")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("expected the client timeout to cut the call short, took %v", elapsed)
	}
}
