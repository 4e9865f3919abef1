package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"groupware-ai-be/internal/dto"
	"groupware-ai-be/internal/model"
	"groupware-ai-be/internal/repository/contract"
	"groupware-ai-be/internal/repository/runstore"
	"groupware-ai-be/pkg/agent"
	"groupware-ai-be/pkg/agent/tools"
	"groupware-ai-be/pkg/callback"
	"groupware-ai-be/pkg/events"
	"groupware-ai-be/pkg/llm"
	pktNats "groupware-ai-be/pkg/nats"
)

// noEvidenceAnswer is sent verbatim when both branches come back empty
// after their fallback retries.
const noEvidenceAnswer = "근거와 데이터가 부족해 답변할 수 없습니다.\n"

const maxTableRows = 10

// IChatbotService defines the chatbot run surface.
type IChatbotService interface {
	Enqueue(ctx context.Context, request *dto.RunChatbotRequest) (*dto.RunChatbotResponse, error)
	GetRunStatus(ctx context.Context, messageId string) (*dto.RunStatusResponse, error)
}

// Narrow views over the pipeline stages so each can be swapped in tests.
type queryPlanner interface {
	Plan(ctx context.Context, question string, history []llm.Message) agent.QueryPlan
}

type relationalExecutor interface {
	Execute(ctx context.Context, tasks []agent.RDBTask, tenant tools.TenantContext) ([]map[string]interface{}, []string)
	FallbackTask(question string) agent.RDBTask
}

type answerStreamer interface {
	Stream(ctx context.Context, in agent.SynthesisInput, emit func(chunk string) error) error
}

type callbackDeliverer interface {
	ValidateURL(raw string) (string, error)
	Deliver(ctx context.Context, callbackURL, callbackKey string, event callback.Event) error
}

type chatbotService struct {
	planner        queryPlanner
	executor       relationalExecutor
	synthesizer    answerStreamer
	retrieval      IRetrievalService
	deliverer      callbackDeliverer
	runStore       runstore.Store
	chatRunRepo    contract.ChatRunRepository
	eventPublisher *pktNats.Publisher
	llmLogger      *log.Logger
}

func NewChatbotService(
	plannerLLM llm.LLMProvider,
	synthLLM llm.LLMProvider,
	db *gorm.DB,
	retrieval IRetrievalService,
	callbackClient *callback.Client,
	runStore runstore.Store,
	chatRunRepo contract.ChatRunRepository,
	eventPublisher *pktNats.Publisher,
) IChatbotService {
	llmLogger := initLLMLogger()

	return &chatbotService{
		planner:        agent.NewPlanner(plannerLLM, llmLogger),
		executor:       tools.NewExecutor(db, llmLogger),
		synthesizer:    agent.NewSynthesizer(synthLLM, llmLogger),
		retrieval:      retrieval,
		deliverer:      callbackClient,
		runStore:       runStore,
		chatRunRepo:    chatRunRepo,
		eventPublisher: eventPublisher,
		llmLogger:      llmLogger,
	}
}

func initLLMLogger() *log.Logger {
	logPath := filepath.Join(".", "logs", "llm_agent.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[LLM-AGENT] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}

// Enqueue validates the request, records the run as queued and starts the
// pipeline in the background. A malformed callback URL is rejected here,
// before anything is queued.
func (cs *chatbotService) Enqueue(ctx context.Context, request *dto.RunChatbotRequest) (*dto.RunChatbotResponse, error) {
	callbackURL, err := cs.deliverer.ValidateURL(request.CallbackUrl)
	if err != nil {
		return nil, err
	}

	if err := cs.runStore.Save(ctx, &runstore.Run{
		MessageId: request.MessageId,
		ComId:     request.ComId,
		EmpId:     request.EmpId,
		Status:    runstore.StatusQueued,
	}); err != nil {
		return nil, err
	}

	// The run outlives the HTTP request; detach from its context.
	go cs.execute(context.Background(), request, callbackURL)

	return &dto.RunChatbotResponse{
		MessageId: request.MessageId,
		Queued:    true,
	}, nil
}

func (cs *chatbotService) GetRunStatus(ctx context.Context, messageId string) (*dto.RunStatusResponse, error) {
	run, err := cs.runStore.Get(ctx, messageId)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, nil
	}
	return &dto.RunStatusResponse{
		MessageId:    run.MessageId,
		Status:       run.Status,
		ErrorMessage: run.ErrorMessage,
		UpdatedAt:    run.UpdatedAt,
	}, nil
}

// execute drives one run end to end: plan, gather, synthesize, deliver.
// Every exit path sends exactly one terminal event and settles the run
// status; the terminal error event itself is best effort.
func (cs *chatbotService) execute(ctx context.Context, request *dto.RunChatbotRequest, callbackURL string) {
	defer func() {
		if r := recover(); r != nil {
			cs.llmLogger.Printf("[RUN %s] panic: %v", request.MessageId, r)
			cs.fail(ctx, request, callbackURL, fmt.Sprintf("internal error: %v", r))
		}
	}()

	cs.setStatus(ctx, request.MessageId, runstore.StatusRunning, "")
	cs.recordRunStart(ctx, request)

	history := historyToMessages(request.History)
	plan := cs.planner.Plan(ctx, request.Question, history)
	cs.llmLogger.Printf("[RUN %s] plan mode=%s rdb=%d rag=%d",
		request.MessageId, plan.Mode, len(plan.RDBTasks), len(plan.RAGTasks))

	rows, summaries, passages := cs.gather(ctx, request, &plan)

	if len(rows) == 0 && len(passages) == 0 {
		cs.llmLogger.Printf("[RUN %s] no evidence after fallback, refusing", request.MessageId)
		if err := cs.deliverer.Deliver(ctx, callbackURL, request.CallbackKey, callback.Event{
			MessageID: request.MessageId,
			Chunk:     noEvidenceAnswer,
			Success:   true,
		}); err != nil {
			cs.fail(ctx, request, callbackURL, fmt.Sprintf("callback delivery: %v", err))
			return
		}
		cs.finish(ctx, request, callbackURL, plan, summaries)
		return
	}

	in := agent.SynthesisInput{
		Question:    request.Question,
		History:     history,
		DBText:      tools.FormatRows(rows, maxTableRows),
		RAGText:     strings.Join(passages, "\n\n"),
		AnswerStyle: plan.AnswerStyle,
		Mode:        plan.Mode,
	}

	err := cs.synthesizer.Stream(ctx, in, func(chunk string) error {
		return cs.deliverer.Deliver(ctx, callbackURL, request.CallbackKey, callback.Event{
			MessageID: request.MessageId,
			Chunk:     chunk,
			Success:   true,
		})
	})
	if err != nil {
		cs.fail(ctx, request, callbackURL, fmt.Sprintf("answer generation: %v", err))
		return
	}

	cs.finish(ctx, request, callbackURL, plan, summaries)
}

// gather runs the active branches concurrently. Each empty branch is retried
// once with a default task built from the raw question before it is given up
// on.
func (cs *chatbotService) gather(ctx context.Context, request *dto.RunChatbotRequest, plan *agent.QueryPlan) ([]map[string]interface{}, []string, []string) {
	tenant := tools.TenantContext{
		CompanyID:  request.ComId,
		EmployeeID: request.EmpId,
	}

	var (
		wg        sync.WaitGroup
		rows      []map[string]interface{}
		summaries []string
		passages  []string
	)

	if plan.IncludesRDB() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rows, summaries = cs.executor.Execute(ctx, plan.RDBTasks, tenant)
			if len(rows) == 0 {
				fallback := []agent.RDBTask{cs.executor.FallbackTask(request.Question)}
				var more []string
				rows, more = cs.executor.Execute(ctx, fallback, tenant)
				summaries = append(summaries, more...)
			}
		}()
	}

	if plan.IncludesRAG() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			passages = cs.retrievePassages(ctx, request.ComId, plan.RAGTasks)
			if len(passages) == 0 {
				passages = cs.retrievePassages(ctx, request.ComId,
					[]agent.RAGTask{agent.DefaultRAGTask(request.Question)})
			}
		}()
	}

	wg.Wait()
	return rows, summaries, passages
}

// retrievePassages runs every semantic task in order. A failing task is
// logged and contributes nothing; the batch continues.
func (cs *chatbotService) retrievePassages(ctx context.Context, comId string, tasks []agent.RAGTask) []string {
	var passages []string
	for _, task := range tasks {
		found, err := cs.retrieval.Retrieve(ctx, comId, task.Query, task.TopK)
		if err != nil {
			cs.llmLogger.Printf("[RAG] retrieve %q failed: %v", task.Query, err)
			continue
		}
		passages = append(passages, found...)
	}
	return passages
}

// finish sends the terminal done event and settles the run as DONE. A
// terminal that cannot be delivered flips the run to FAILED since the caller
// never learned the outcome.
func (cs *chatbotService) finish(ctx context.Context, request *dto.RunChatbotRequest, callbackURL string, plan agent.QueryPlan, summaries []string) {
	err := cs.deliverer.Deliver(ctx, callbackURL, request.CallbackKey, callback.Event{
		MessageID: request.MessageId,
		Done:      true,
		Success:   true,
	})
	if err != nil {
		cs.llmLogger.Printf("[RUN %s] terminal delivery failed: %v", request.MessageId, err)
		cs.setStatus(ctx, request.MessageId, runstore.StatusFailed, err.Error())
		cs.recordRunEnd(ctx, request, plan, summaries, runstore.StatusFailed, err.Error())
		cs.publishEvent(ctx, events.NewRunFailed(request.MessageId, request.ComId, request.EmpId, err.Error()))
		return
	}

	cs.setStatus(ctx, request.MessageId, runstore.StatusDone, "")
	cs.recordRunEnd(ctx, request, plan, summaries, runstore.StatusDone, "")
	cs.publishEvent(ctx, events.NewRunCompleted(request.MessageId, request.ComId, request.EmpId))
}

// fail settles the run as FAILED and makes one best-effort attempt to tell
// the caller via a terminal error event. A failed attempt is only logged;
// there is nothing left to escalate to.
func (cs *chatbotService) fail(ctx context.Context, request *dto.RunChatbotRequest, callbackURL string, reason string) {
	cs.llmLogger.Printf("[RUN %s] failed: %s", request.MessageId, reason)

	if err := cs.deliverer.Deliver(ctx, callbackURL, request.CallbackKey, callback.Event{
		MessageID:    request.MessageId,
		Done:         true,
		Success:      false,
		ErrorMessage: reason,
	}); err != nil {
		cs.llmLogger.Printf("[RUN %s] terminal error delivery failed: %v", request.MessageId, err)
	}

	cs.setStatus(ctx, request.MessageId, runstore.StatusFailed, reason)
	cs.recordRunEnd(ctx, request, agent.QueryPlan{}, nil, runstore.StatusFailed, reason)
	cs.publishEvent(ctx, events.NewRunFailed(request.MessageId, request.ComId, request.EmpId, reason))
}

func (cs *chatbotService) setStatus(ctx context.Context, messageId, status, errorMessage string) {
	if err := cs.runStore.SetStatus(ctx, messageId, status, errorMessage); err != nil {
		cs.llmLogger.Printf("[RUN %s] status update to %s failed: %v", messageId, status, err)
	}
}

func (cs *chatbotService) recordRunStart(ctx context.Context, request *dto.RunChatbotRequest) {
	if cs.chatRunRepo == nil {
		return
	}
	err := cs.chatRunRepo.Create(ctx, &model.ChatRun{
		Id:        uuid.New(),
		MessageId: request.MessageId,
		ComId:     request.ComId,
		EmpId:     request.EmpId,
		Question:  request.Question,
		Status:    runstore.StatusRunning,
		CreatedAt: time.Now(),
	})
	if err != nil {
		cs.llmLogger.Printf("[RUN %s] audit create failed: %v", request.MessageId, err)
	}
}

func (cs *chatbotService) recordRunEnd(ctx context.Context, request *dto.RunChatbotRequest, plan agent.QueryPlan, summaries []string, status, errorMessage string) {
	if cs.chatRunRepo == nil {
		return
	}
	now := time.Now()
	run := &model.ChatRun{
		MessageId:    request.MessageId,
		Status:       status,
		ErrorMessage: errorMessage,
		CompletedAt:  &now,
	}
	if planJson, err := json.Marshal(plan); err == nil {
		run.Plan = datatypes.JSON(planJson)
	}
	if len(summaries) > 0 {
		if summariesJson, err := json.Marshal(summaries); err == nil {
			run.TaskSummaries = datatypes.JSON(summariesJson)
		}
	}
	if err := cs.chatRunRepo.Finish(ctx, run); err != nil {
		cs.llmLogger.Printf("[RUN %s] audit finish failed: %v", request.MessageId, err)
	}
}

func (cs *chatbotService) publishEvent(ctx context.Context, evt events.Event) {
	if cs.eventPublisher == nil {
		return
	}
	if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
		cs.llmLogger.Printf("[EVENTS] publish %s failed: %v", evt.EventType(), err)
	}
}

func historyToMessages(history []dto.HistoryTurn) []llm.Message {
	if len(history) == 0 {
		return nil
	}
	messages := make([]llm.Message, 0, len(history))
	for _, turn := range history {
		messages = append(messages, llm.Message{
			Role:    turn.Role,
			Content: turn.Content,
		})
	}
	return messages
}
