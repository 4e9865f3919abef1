package agent

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"groupware-ai-be/pkg/llm"
)

const plannerSystemPrompt = "너는 사내 챗봇 플래너다. 질문을 해결하기 위해 DB 조회(RDB), 규정 검색(RAG), 또는 둘 다(Hybrid) 계획을 JSON으로만 출력한다.\n" +
	"- mode: rdb | rag | hybrid\n" +
	"- rag_tasks: [{\"query\": \"...\", \"top_k\": 5}]\n" +
	"- rdb_tasks: [{\"name\": \"task_name\", \"args\": {...}}]\n" +
	"- answer_style: 요약/비교/추천 등 힌트\n" +
	"규정/정책/조항 해석은 rag, 직원/회사 데이터/개수/목록/일정/예약/연락처는 rdb, 둘 다 필요하면 hybrid.\n" +
	"JSON만 출력하고, 설명은 쓰지 마."

// Planner turns a question plus conversation history into a QueryPlan.
type Planner struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewPlanner(llmProvider llm.LLMProvider, logger *log.Logger) *Planner {
	return &Planner{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

// Plan asks the model for a structured plan. It never fails: any model,
// parse or validation error degrades to DefaultPlan(question) so the
// orchestrator always receives a usable plan.
func (p *Planner) Plan(ctx context.Context, question string, history []llm.Message) QueryPlan {
	userBlock := question
	if historyText := HistoryToText(history); historyText != "" {
		userBlock = "[이전 대화]\n" + historyText + "\n\n[현재 질문]\n" + question
	}

	raw, err := p.llmProvider.Chat(ctx, []llm.Message{
		{Role: "system", Content: plannerSystemPrompt},
		{Role: "user", Content: userBlock},
	}, llm.WithTemperature(0))
	if err != nil {
		p.logger.Printf("[PLANNER] LLM failed: %v", err)
		return DefaultPlan(question)
	}

	var plan QueryPlan
	if err := json.Unmarshal([]byte(extractJSON(raw)), &plan); err != nil {
		p.logger.Printf("[PLANNER] parse failed: %v", err)
		return DefaultPlan(question)
	}
	if err := plan.Normalize(); err != nil {
		p.logger.Printf("[PLANNER] invalid plan: %v", err)
		return DefaultPlan(question)
	}

	return plan
}

// HistoryToText renders history as alternating "User:"/"Assistant:" lines,
// oldest first. Turns with empty content are skipped.
func HistoryToText(history []llm.Message) string {
	if len(history) == 0 {
		return ""
	}
	lines := make([]string, 0, len(history))
	for _, m := range history {
		if m.Content == "" {
			continue
		}
		prefix := "Assistant"
		if strings.HasPrefix(strings.ToLower(m.Role), "user") {
			prefix = "User"
		}
		lines = append(lines, prefix+": "+m.Content)
	}
	return strings.Join(lines, "\n")
}

// extractJSON isolates the JSON object from a model response that may wrap
// it in code fences or prose.
func extractJSON(response string) string {
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")

	if startIdx == -1 || endIdx == -1 || endIdx <= startIdx {
		return response
	}

	return response[startIdx : endIdx+1]
}
