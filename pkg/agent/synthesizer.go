package agent

import (
	"context"
	"log"
	"strings"

	"groupware-ai-be/pkg/llm"
)

const synthesizerSystemPrompt = "너는 사내 전자결재/그룹웨어 챗봇이다. DB 결과는 사실, 규정 근거는 정책이다. " +
	"출처가 없는 내용은 추측하지 말고, 필요시 근거/데이터 부족을 명시한다."

// SynthesisInput carries the merged evidence for one answer generation.
type SynthesisInput struct {
	Question    string
	History     []llm.Message
	DBText      string
	RAGText     string
	AnswerStyle string
	Mode        Mode
}

// Synthesizer produces the final answer as a stream of text chunks.
type Synthesizer struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewSynthesizer(llmProvider llm.LLMProvider, logger *log.Logger) *Synthesizer {
	return &Synthesizer{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

// Stream generates the answer and pushes every chunk through emit, in
// order. emit is called synchronously so the caller controls pacing.
//
// If the streaming call fails before producing a single delta, one
// non-streaming retry is made with the same prompt and its full response is
// re-chunked into paragraphs, keeping the caller's delivery loop uniform.
// Once a delta has been emitted there is no retry: a mid-stream error (or
// an emit error) aborts the generation and is returned as-is.
func (s *Synthesizer) Stream(ctx context.Context, in SynthesisInput, emit func(chunk string) error) error {
	messages := s.buildMessages(in)

	emitted := 0
	err := s.llmProvider.ChatStream(ctx, messages, func(delta string) error {
		emitted++
		return emit(delta)
	}, llm.WithTemperature(0.2))
	if err == nil {
		return nil
	}
	if emitted > 0 {
		return err
	}

	s.logger.Printf("[SYNTH] streaming failed to establish, retrying non-streaming: %v", err)

	full, err := s.llmProvider.Chat(ctx, messages, llm.WithTemperature(0.2))
	if err != nil {
		return err
	}
	for _, chunk := range SplitParagraphs(full) {
		if err := emit(chunk); err != nil {
			return err
		}
	}
	return nil
}

func (s *Synthesizer) buildMessages(in SynthesisInput) []llm.Message {
	styleHint := ""
	if in.AnswerStyle != "" {
		styleHint = "답변 스타일: " + in.AnswerStyle
	}

	dbText := in.DBText
	if dbText == "" {
		dbText = "(없음)"
	}
	ragText := in.RAGText
	if ragText == "" {
		ragText = "(없음)"
	}

	var prompt strings.Builder
	prompt.WriteString("아래 DB 결과와 규정 근거를 활용해 한국어로 간결하고 정확하게 답변하세요. ")
	prompt.WriteString("DB는 사실 데이터, RAG는 규정/정책 근거입니다. 정보가 없으면 모른다고 말하세요. ")
	prompt.WriteString(styleHint)
	prompt.WriteString("\n\n")
	if historyText := HistoryToText(in.History); historyText != "" {
		prompt.WriteString("[이전 대화]\n" + historyText + "\n\n")
	}
	prompt.WriteString("[질문]\n" + in.Question + "\n\n")
	prompt.WriteString("[DB 결과]\n" + dbText + "\n\n")
	prompt.WriteString("[규정 근거]\n" + ragText)

	return []llm.Message{
		{Role: "system", Content: synthesizerSystemPrompt},
		{Role: "user", Content: prompt.String()},
	}
}

// SplitParagraphs re-chunks a full response into paragraph-sized pieces by
// splitting on blank lines. Empty paragraphs are dropped.
func SplitParagraphs(full string) []string {
	var chunks []string
	for _, para := range strings.Split(full, "\n\n") {
		part := strings.TrimSpace(para)
		if part != "" {
			chunks = append(chunks, part+"\n")
		}
	}
	return chunks
}
