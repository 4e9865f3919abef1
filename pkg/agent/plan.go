package agent

import (
	"fmt"
	"strings"
)

// Mode selects which data sources a plan consults.
type Mode string

const (
	ModeRDB    Mode = "rdb"
	ModeRAG    Mode = "rag"
	ModeHybrid Mode = "hybrid"
)

const DefaultTopK = 5

// RAGTask is one semantic search request against the provision index.
type RAGTask struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

// RDBTask is one named tool invocation against the relational registry.
type RDBTask struct {
	Name string                 `json:"name"`
	Args map[string]interface{} `json:"args"`
}

// QueryPlan is the planner's structured decision for a single question.
type QueryPlan struct {
	Mode        Mode      `json:"mode"`
	RAGTasks    []RAGTask `json:"rag_tasks"`
	RDBTasks    []RDBTask `json:"rdb_tasks"`
	AnswerStyle string    `json:"answer_style"`
}

// IncludesRDB reports whether the relational branch is active.
func (p *QueryPlan) IncludesRDB() bool {
	return p.Mode == ModeRDB || p.Mode == ModeHybrid
}

// IncludesRAG reports whether the semantic branch is active.
func (p *QueryPlan) IncludesRAG() bool {
	return p.Mode == ModeRAG || p.Mode == ModeHybrid
}

// Normalize validates the mode and fills task defaults. An empty task list
// for the active mode is a valid state; downstream fallback handles it.
func (p *QueryPlan) Normalize() error {
	p.Mode = Mode(strings.ToLower(strings.TrimSpace(string(p.Mode))))
	switch p.Mode {
	case ModeRDB, ModeRAG, ModeHybrid:
	default:
		return fmt.Errorf("invalid plan mode: %q", p.Mode)
	}
	for i := range p.RAGTasks {
		if p.RAGTasks[i].TopK <= 0 {
			p.RAGTasks[i].TopK = DefaultTopK
		}
	}
	for i := range p.RDBTasks {
		if p.RDBTasks[i].Args == nil {
			p.RDBTasks[i].Args = map[string]interface{}{}
		}
	}
	return nil
}

// DefaultPlan is the degraded plan used whenever planning fails: a single
// semantic task over the raw question.
func DefaultPlan(question string) QueryPlan {
	return QueryPlan{
		Mode:     ModeRAG,
		RAGTasks: []RAGTask{{Query: question, TopK: DefaultTopK}},
	}
}

// DefaultRAGTask is the single-task retry used when the semantic branch
// comes back empty.
func DefaultRAGTask(question string) RAGTask {
	return RAGTask{Query: question, TopK: DefaultTopK}
}
