package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"
)

type stubProvider struct {
	name  string
	reply string
	err   error
	calls int
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Generate(_ context.Context, _, _ string) (string, error) {
	p.calls++
	return p.reply, p.err
}

func TestServiceDisabled(t *testing.T) {
	svc := NewService()
	if svc.Enabled() {
		t.Error("expected service without providers to be disabled")
	}
	if svc.ProviderName() != "none" {
		t.Errorf("expected provider name none, got %q", svc.ProviderName())
	}
	if _, err := svc.Generate(context.Background(), "hello"); !errors.Is(err, ErrDisabled) {
		t.Errorf("expected ErrDisabled, got %v", err)
	}
}

func TestServiceFallsBack(t *testing.T) {
	broken := &stubProvider{name: "broken", err: errors.New("rate limited")}
	working := &stubProvider{name: "working", reply: "hello from fallback"}
	svc := NewService(broken, working)

	text, err := svc.Generate(context.Background(), "hi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "hello from fallback" {
		t.Errorf("unexpected reply %q", text)
	}
	if broken.calls != 1 || working.calls != 1 {
		t.Errorf("expected each provider tried once, got %d and %d", broken.calls, working.calls)
	}
}

func TestServiceAllFail(t *testing.T) {
	first := &stubProvider{name: "first", err: errors.New("down")}
	second := &stubProvider{name: "second", err: errors.New("also down")}
	svc := NewService(first, second)

	_, err := svc.Generate(context.Background(), "hi")
	if err == nil {
		t.Fatal("expected an error when every provider fails")
	}
	if !errors.Is(err, first.err) || !errors.Is(err, second.err) {
		t.Errorf("joined error missing provider errors: %v", err)
	}
}

func TestServicePrefersFirstProvider(t *testing.T) {
	primary := &stubProvider{name: "primary", reply: "from primary"}
	backup := &stubProvider{name: "backup", reply: "from backup"}
	svc := NewService(primary, backup)

	text, err := svc.Generate(context.Background(), "hi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "from primary" {
		t.Errorf("unexpected reply %q", text)
	}
	if backup.calls != 0 {
		t.Error("backup should not be called when primary succeeds")
	}
}

// roundTripFunc adapts a function into an HTTPClient.
type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func TestChatCompletionProvider(t *testing.T) {
	var gotModel, gotAuth string
	client := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		gotAuth = req.Header.Get("Authorization")
		var parsed chatRequest
		if err := json.NewDecoder(req.Body).Decode(&parsed); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		gotModel = parsed.Model
		return jsonResponse(200, `{"choices":[{"message":{"role":"assistant","content":"hi!"}}]}`), nil
	})

	p := NewGroqProvider("secret", "llama3-8b-8192", client)
	text, err := p.Generate(context.Background(), "system", "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "hi!" {
		t.Errorf("unexpected reply %q", text)
	}
	if gotModel != "llama3-8b-8192" {
		t.Errorf("unexpected model %q", gotModel)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("unexpected auth header %q", gotAuth)
	}
}

func TestChatCompletionProviderModelFallback(t *testing.T) {
	var models []string
	client := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		var parsed chatRequest
		if err := json.NewDecoder(req.Body).Decode(&parsed); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		models = append(models, parsed.Model)
		if len(models) < 2 {
			return jsonResponse(402, `{"error":"insufficient credits"}`), nil
		}
		return jsonResponse(200, fmt.Sprintf(`{"choices":[{"message":{"content":"from %s"}}]}`, parsed.Model)), nil
	})

	p := NewOpenRouterProvider("secret", "", client)
	text, err := p.Generate(context.Background(), "system", "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if models[0] != FreeOpenRouterModels[0] {
		t.Errorf("expected primary model first, got %q", models[0])
	}
	if models[1] != FreeOpenRouterModels[1] {
		t.Errorf("expected first fallback second, got %q", models[1])
	}
	expected := "from " + FreeOpenRouterModels[1]
	if text != expected {
		t.Errorf("expected %q, got %q", expected, text)
	}
}

func TestChatCompletionProviderNoChoices(t *testing.T) {
	client := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, `{"choices":[]}`), nil
	})

	p := NewGroqProvider("secret", "llama3-8b-8192", client)
	if _, err := p.Generate(context.Background(), "system", "hello"); err == nil {
		t.Error("expected an error for empty choices")
	}
}
