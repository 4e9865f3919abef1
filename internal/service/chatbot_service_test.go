package service

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groupware-ai-be/internal/dto"
	"groupware-ai-be/internal/repository/runstore"
	"groupware-ai-be/pkg/agent"
	"groupware-ai-be/pkg/agent/tools"
	"groupware-ai-be/pkg/callback"
	"groupware-ai-be/pkg/llm"
)

type fakePlanner struct {
	plan agent.QueryPlan
}

func (f *fakePlanner) Plan(context.Context, string, []llm.Message) agent.QueryPlan {
	return f.plan
}

type fakeExecutor struct {
	results [][]map[string]interface{}
	calls   [][]agent.RDBTask
}

func (f *fakeExecutor) Execute(_ context.Context, tasks []agent.RDBTask, _ tools.TenantContext) ([]map[string]interface{}, []string) {
	f.calls = append(f.calls, tasks)
	if len(f.results) == 0 {
		return nil, nil
	}
	rows := f.results[0]
	f.results = f.results[1:]
	return rows, []string{"summary"}
}

func (f *fakeExecutor) FallbackTask(question string) agent.RDBTask {
	return agent.RDBTask{Name: "search_board_posts", Args: map[string]interface{}{"keyword": question}}
}

type fakeRetrieval struct {
	results [][]string
	queries []string
}

func (f *fakeRetrieval) Retrieve(_ context.Context, _ string, query string, _ int) ([]string, error) {
	f.queries = append(f.queries, query)
	if len(f.results) == 0 {
		return nil, nil
	}
	passages := f.results[0]
	f.results = f.results[1:]
	return passages, nil
}

type fakeStreamer struct {
	chunks []string
	err    error
	lastIn agent.SynthesisInput
}

func (f *fakeStreamer) Stream(_ context.Context, in agent.SynthesisInput, emit func(chunk string) error) error {
	f.lastIn = in
	for _, c := range f.chunks {
		if err := emit(c); err != nil {
			return err
		}
	}
	return f.err
}

type fakeDeliverer struct {
	mu           sync.Mutex
	events       []callback.Event
	failTerminal bool
	validateErr  error
}

func (f *fakeDeliverer) ValidateURL(raw string) (string, error) {
	if f.validateErr != nil {
		return "", f.validateErr
	}
	return raw, nil
}

func (f *fakeDeliverer) Deliver(_ context.Context, _, _ string, event callback.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if event.Done && f.failTerminal {
		return errors.New("terminal delivery refused")
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakeDeliverer) recorded() []callback.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]callback.Event(nil), f.events...)
}

func newTestService(planner queryPlanner, executor relationalExecutor, retrieval IRetrievalService, streamer answerStreamer, deliverer callbackDeliverer, store runstore.Store) *chatbotService {
	return &chatbotService{
		planner:     planner,
		executor:    executor,
		synthesizer: streamer,
		retrieval:   retrieval,
		deliverer:   deliverer,
		runStore:    store,
		llmLogger:   log.New(io.Discard, "", 0),
	}
}

func testRequest() *dto.RunChatbotRequest {
	return &dto.RunChatbotRequest{
		MessageId:   "msg-1",
		ComId:       "C001",
		EmpId:       "E042",
		Question:    "연차가 며칠 남았나요?",
		CallbackUrl: "https://groupware.example.com/ai/callback",
		CallbackKey: "secret",
	}
}

func seedRun(t *testing.T, store runstore.Store, req *dto.RunChatbotRequest) {
	t.Helper()
	require.NoError(t, store.Save(context.Background(), &runstore.Run{
		MessageId: req.MessageId,
		ComId:     req.ComId,
		EmpId:     req.EmpId,
		Status:    runstore.StatusQueued,
	}))
}

func TestExecuteStreamsChunksThenOneTerminal(t *testing.T) {
	store := runstore.NewMemoryStore()
	deliverer := &fakeDeliverer{}
	streamer := &fakeStreamer{chunks: []string{"연차는 ", "3일 남았습니다."}}
	req := testRequest()
	seedRun(t, store, req)

	cs := newTestService(
		&fakePlanner{plan: agent.QueryPlan{
			Mode:     agent.ModeHybrid,
			RDBTasks: []agent.RDBTask{{Name: "get_my_attendance", Args: map[string]interface{}{}}},
			RAGTasks: []agent.RAGTask{{Query: "연차 규정", TopK: 5}},
		}},
		&fakeExecutor{results: [][]map[string]interface{}{{{"remaining": 3}}}},
		&fakeRetrieval{results: [][]string{{"(취업규칙) 연차는 연 15일"}}},
		streamer,
		deliverer,
		store,
	)

	cs.execute(context.Background(), req, req.CallbackUrl)

	events := deliverer.recorded()
	require.Len(t, events, 3)
	assert.Equal(t, "연차는 ", events[0].Chunk)
	assert.Equal(t, "3일 남았습니다.", events[1].Chunk)
	for i := 0; i < 2; i++ {
		assert.False(t, events[i].Done)
		assert.True(t, events[i].Success, "chunk event %d must carry success=true", i)
	}

	terminal := events[2]
	assert.True(t, terminal.Done)
	assert.True(t, terminal.Success)
	assert.Empty(t, terminal.Chunk)

	run, err := store.Get(context.Background(), req.MessageId)
	require.NoError(t, err)
	assert.Equal(t, runstore.StatusDone, run.Status)

	assert.Contains(t, streamer.lastIn.DBText, "remaining")
	assert.Contains(t, streamer.lastIn.RAGText, "취업규칙")
}

func TestExecuteRetriesEmptyBranchesWithRawQuestion(t *testing.T) {
	store := runstore.NewMemoryStore()
	deliverer := &fakeDeliverer{}
	executor := &fakeExecutor{results: [][]map[string]interface{}{nil, {{"post": "연차 정산 안내"}}}}
	retrieval := &fakeRetrieval{results: [][]string{nil, {"(규정) 연차 이월 불가"}}}
	req := testRequest()
	seedRun(t, store, req)

	cs := newTestService(
		&fakePlanner{plan: agent.QueryPlan{
			Mode:     agent.ModeHybrid,
			RDBTasks: []agent.RDBTask{{Name: "get_my_todos", Args: map[string]interface{}{}}},
			RAGTasks: []agent.RAGTask{{Query: "이상한 질의", TopK: 5}},
		}},
		executor,
		retrieval,
		&fakeStreamer{chunks: []string{"답변"}},
		deliverer,
		store,
	)

	cs.execute(context.Background(), req, req.CallbackUrl)

	require.Len(t, executor.calls, 2)
	assert.Equal(t, "search_board_posts", executor.calls[1][0].Name)
	assert.Equal(t, req.Question, executor.calls[1][0].Args["keyword"])

	require.Len(t, retrieval.queries, 2)
	assert.Equal(t, req.Question, retrieval.queries[1])

	events := deliverer.recorded()
	require.NotEmpty(t, events)
	assert.True(t, events[len(events)-1].Done)
	assert.True(t, events[len(events)-1].Success)
}

func TestExecuteRefusesWhenEvidenceExhausted(t *testing.T) {
	store := runstore.NewMemoryStore()
	deliverer := &fakeDeliverer{}
	req := testRequest()
	seedRun(t, store, req)

	cs := newTestService(
		&fakePlanner{plan: agent.QueryPlan{
			Mode:     agent.ModeRAG,
			RAGTasks: []agent.RAGTask{{Query: "없는 규정", TopK: 5}},
		}},
		&fakeExecutor{},
		&fakeRetrieval{}, // empty on every call
		&fakeStreamer{chunks: []string{"절대 생성되면 안 됨"}},
		deliverer,
		store,
	)

	cs.execute(context.Background(), req, req.CallbackUrl)

	events := deliverer.recorded()
	require.Len(t, events, 2)
	assert.Equal(t, noEvidenceAnswer, events[0].Chunk)
	assert.False(t, events[0].Done)
	assert.True(t, events[0].Success, "refusal chunk must carry success=true")
	assert.True(t, events[1].Done)
	assert.True(t, events[1].Success)

	run, err := store.Get(context.Background(), req.MessageId)
	require.NoError(t, err)
	assert.Equal(t, runstore.StatusDone, run.Status)
}

func TestExecuteSendsTerminalErrorOnSynthesisFailure(t *testing.T) {
	store := runstore.NewMemoryStore()
	deliverer := &fakeDeliverer{}
	req := testRequest()
	seedRun(t, store, req)

	cs := newTestService(
		&fakePlanner{plan: agent.QueryPlan{
			Mode:     agent.ModeRAG,
			RAGTasks: []agent.RAGTask{{Query: "연차", TopK: 5}},
		}},
		&fakeExecutor{},
		&fakeRetrieval{results: [][]string{{"(규정) 연차는 연 15일"}}},
		&fakeStreamer{chunks: []string{"부분 "}, err: errors.New("model connection reset")},
		deliverer,
		store,
	)

	cs.execute(context.Background(), req, req.CallbackUrl)

	events := deliverer.recorded()
	require.Len(t, events, 2)
	assert.Equal(t, "부분 ", events[0].Chunk)
	assert.False(t, events[0].Done)
	assert.True(t, events[0].Success)

	terminal := events[1]
	assert.True(t, terminal.Done)
	assert.False(t, terminal.Success)
	assert.Contains(t, terminal.ErrorMessage, "model connection reset")

	run, err := store.Get(context.Background(), req.MessageId)
	require.NoError(t, err)
	assert.Equal(t, runstore.StatusFailed, run.Status)
}

func TestExecuteMarksFailedWhenTerminalUndeliverable(t *testing.T) {
	store := runstore.NewMemoryStore()
	deliverer := &fakeDeliverer{failTerminal: true}
	req := testRequest()
	seedRun(t, store, req)

	cs := newTestService(
		&fakePlanner{plan: agent.QueryPlan{
			Mode:     agent.ModeRAG,
			RAGTasks: []agent.RAGTask{{Query: "연차", TopK: 5}},
		}},
		&fakeExecutor{},
		&fakeRetrieval{results: [][]string{{"(규정) 연차는 연 15일"}}},
		&fakeStreamer{chunks: []string{"답변"}},
		deliverer,
		store,
	)

	cs.execute(context.Background(), req, req.CallbackUrl)

	run, err := store.Get(context.Background(), req.MessageId)
	require.NoError(t, err)
	assert.Equal(t, runstore.StatusFailed, run.Status)
}

func TestEnqueueRejectsBadCallbackURL(t *testing.T) {
	store := runstore.NewMemoryStore()
	deliverer := &fakeDeliverer{validateErr: &callback.PermanentError{Reason: "not http"}}

	cs := newTestService(&fakePlanner{}, &fakeExecutor{}, &fakeRetrieval{}, &fakeStreamer{}, deliverer, store)

	req := testRequest()
	req.CallbackUrl = "ftp://nope"
	_, err := cs.Enqueue(context.Background(), req)

	require.Error(t, err)
	var permanent *callback.PermanentError
	assert.ErrorAs(t, err, &permanent)

	run, err := store.Get(context.Background(), req.MessageId)
	require.NoError(t, err)
	assert.Nil(t, run, "nothing should be queued for a rejected request")
}

func TestGetRunStatus(t *testing.T) {
	store := runstore.NewMemoryStore()
	cs := newTestService(&fakePlanner{}, &fakeExecutor{}, &fakeRetrieval{}, &fakeStreamer{}, &fakeDeliverer{}, store)

	res, err := cs.GetRunStatus(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Nil(t, res)

	seedRun(t, store, testRequest())
	res, err = cs.GetRunStatus(context.Background(), "msg-1")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, runstore.StatusQueued, res.Status)
}
