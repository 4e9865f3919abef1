package agent

import (
	"context"
	"io"
	"log"
	"testing"

	"groupware-ai-be/pkg/llm"
)

// fakeLLM is a canned-response provider shared by the agent tests.
type fakeLLM struct {
	chatResponse string
	chatErr      error
	streamDeltas []string
	streamErr    error
	chatCalls    int
}

func (f *fakeLLM) Chat(_ context.Context, _ []llm.Message, _ ...llm.Option) (string, error) {
	f.chatCalls++
	return f.chatResponse, f.chatErr
}

func (f *fakeLLM) ChatStream(_ context.Context, _ []llm.Message, onDelta llm.StreamHandler, _ ...llm.Option) error {
	for _, d := range f.streamDeltas {
		if err := onDelta(d); err != nil {
			return err
		}
	}
	return f.streamErr
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestPlannerPlan(t *testing.T) {
	errBoom := io.ErrUnexpectedEOF

	tests := []struct {
		name         string
		response     string
		err          error
		wantMode     Mode
		wantRAGCount int
		wantRDBCount int
	}{
		{
			name:         "valid hybrid plan",
			response:     `{"mode":"hybrid","rag_tasks":[{"query":"연차 규정"}],"rdb_tasks":[{"name":"get_my_todos","args":{}}]}`,
			wantMode:     ModeHybrid,
			wantRAGCount: 1,
			wantRDBCount: 1,
		},
		{
			name:         "fenced json plan",
			response:     "```json\n{\"mode\":\"rdb\",\"rdb_tasks\":[{\"name\":\"get_my_mails\"}]}\n```",
			wantMode:     ModeRDB,
			wantRDBCount: 1,
		},
		{
			name:         "prose around json",
			response:     "계획은 다음과 같습니다: {\"mode\":\"rag\",\"rag_tasks\":[{\"query\":\"출장비\"}]} 입니다.",
			wantMode:     ModeRAG,
			wantRAGCount: 1,
		},
		{
			name:         "garbage degrades to default",
			response:     "모르겠습니다",
			wantMode:     ModeRAG,
			wantRAGCount: 1,
		},
		{
			name:         "invalid mode degrades to default",
			response:     `{"mode":"sql","rdb_tasks":[{"name":"x"}]}`,
			wantMode:     ModeRAG,
			wantRAGCount: 1,
		},
		{
			name:         "llm error degrades to default",
			err:          errBoom,
			wantMode:     ModeRAG,
			wantRAGCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPlanner(&fakeLLM{chatResponse: tt.response, chatErr: tt.err}, discardLogger())

			plan := p.Plan(context.Background(), "연차가 며칠 남았나요?", nil)

			if plan.Mode != tt.wantMode {
				t.Errorf("Mode = %q, want %q", plan.Mode, tt.wantMode)
			}
			if len(plan.RAGTasks) != tt.wantRAGCount {
				t.Errorf("RAGTasks = %d, want %d", len(plan.RAGTasks), tt.wantRAGCount)
			}
			if len(plan.RDBTasks) != tt.wantRDBCount {
				t.Errorf("RDBTasks = %d, want %d", len(plan.RDBTasks), tt.wantRDBCount)
			}
		})
	}
}

func TestPlannerFillsTaskDefaults(t *testing.T) {
	p := NewPlanner(&fakeLLM{
		chatResponse: `{"mode":"hybrid","rag_tasks":[{"query":"휴가"}],"rdb_tasks":[{"name":"get_my_todos"}]}`,
	}, discardLogger())

	plan := p.Plan(context.Background(), "휴가 규정?", nil)

	if plan.RAGTasks[0].TopK != DefaultTopK {
		t.Errorf("TopK = %d, want %d", plan.RAGTasks[0].TopK, DefaultTopK)
	}
	if plan.RDBTasks[0].Args == nil {
		t.Error("Args should be initialized, got nil")
	}
}

func TestHistoryToText(t *testing.T) {
	history := []llm.Message{
		{Role: "user", Content: "안녕"},
		{Role: "assistant", Content: "무엇을 도와드릴까요?"},
		{Role: "user", Content: ""},
	}

	got := HistoryToText(history)
	want := "User: 안녕\nAssistant: 무엇을 도와드릴까요?"
	if got != want {
		t.Errorf("HistoryToText = %q, want %q", got, want)
	}

	if HistoryToText(nil) != "" {
		t.Error("empty history should render empty")
	}
}
