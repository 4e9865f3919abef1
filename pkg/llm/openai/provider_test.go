package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"groupware-ai-be/pkg/llm"
)

func TestChatParsesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("authorization = %q", auth)
		}
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"결재 라인은 3단계입니다."}}]}`)
	}))
	defer srv.Close()

	p := NewOpenAIProvider(srv.URL, "test-key", "gpt-4o-mini")
	got, err := p.Chat(context.Background(), []llm.Message{{Role: "user", Content: "결재 라인?"}})

	if err != nil {
		t.Fatalf("Chat returned %v", err)
	}
	if got != "결재 라인은 3단계입니다." {
		t.Errorf("content = %q", got)
	}
}

func TestChatStreamCollectsDeltas(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"연차는 \"}}]}\n\n")
		fmt.Fprint(w, ": keep-alive comment\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"3일 남았습니다.\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{},\"finish_reason\":\"stop\"}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	p := NewOpenAIProvider(srv.URL, "", "gpt-4o-mini")

	var got []string
	err := p.ChatStream(context.Background(), []llm.Message{{Role: "user", Content: "연차?"}}, func(delta string) error {
		got = append(got, delta)
		return nil
	})

	if err != nil {
		t.Fatalf("ChatStream returned %v", err)
	}
	if want := []string{"연차는 ", "3일 남았습니다."}; !reflect.DeepEqual(got, want) {
		t.Errorf("deltas = %v, want %v", got, want)
	}
}

func TestChatStreamStopsOnHandlerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"a\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"b\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	p := NewOpenAIProvider(srv.URL, "", "gpt-4o-mini")

	handlerErr := errors.New("downstream refused chunk")
	calls := 0
	err := p.ChatStream(context.Background(), nil, func(string) error {
		calls++
		return handlerErr
	})

	if !errors.Is(err, handlerErr) {
		t.Fatalf("err = %v, want %v", err, handlerErr)
	}
	if calls != 1 {
		t.Errorf("handler calls = %d, want 1", calls)
	}
}

func TestChatStreamSurfacesHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model overloaded"}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewOpenAIProvider(srv.URL, "", "gpt-4o-mini")
	err := p.ChatStream(context.Background(), nil, func(string) error { return nil })

	if err == nil {
		t.Fatal("expected error for non-200 response")
	}
}
