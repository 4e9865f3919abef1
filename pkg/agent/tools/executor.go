package tools

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"gorm.io/gorm"

	"groupware-ai-be/pkg/agent"
)

// Executor resolves and runs planned relational tasks against the registry.
type Executor struct {
	db       *gorm.DB
	registry map[string]Tool
	logger   *log.Logger
}

func NewExecutor(db *gorm.DB, logger *log.Logger) *Executor {
	return &Executor{
		db:       db,
		registry: Registry(),
		logger:   logger,
	}
}

// Execute runs every task in order and aggregates rows across tasks (task
// order, then row order per task) plus one "<name>: <n> rows" summary line
// per executed task.
//
// Partial failure is non-fatal: an unknown tool name is logged and skipped,
// and a failing tool is logged while the batch continues. Execute itself
// never returns an error.
func (e *Executor) Execute(ctx context.Context, tasks []agent.RDBTask, tenant TenantContext) ([]map[string]interface{}, []string) {
	var allRows []map[string]interface{}
	var summaries []string

	for _, task := range tasks {
		tool, ok := e.registry[task.Name]
		if !ok {
			e.logger.Printf("[RDB TOOL] unknown task %s, skip", task.Name)
			continue
		}

		args := e.scopedArgs(tool, task.Args, tenant)

		rows, err := tool.Run(ctx, e.db, args)
		if err != nil {
			e.logger.Printf("[RDB TOOL] %s failed: %v", task.Name, err)
			continue
		}

		allRows = append(allRows, rows...)
		summaries = append(summaries, fmt.Sprintf("%s: %d rows", task.Name, len(rows)))
	}

	return allRows, summaries
}

// scopedArgs copies the task arguments and injects tenant identifiers for
// the parameters the tool declares, unless the caller already supplied
// them. Tools are never reachable without this scoping.
func (e *Executor) scopedArgs(tool Tool, taskArgs map[string]interface{}, tenant TenantContext) Args {
	args := make(Args, len(taskArgs)+2)
	for k, v := range taskArgs {
		args[k] = v
	}
	if tool.NeedsCompany && tenant.CompanyID != "" && !args.Has("com_id") {
		args["com_id"] = tenant.CompanyID
	}
	if tool.NeedsEmployee && tenant.EmployeeID != "" && !args.Has("emp_id") {
		args["emp_id"] = tenant.EmployeeID
	}
	return args
}

// FallbackTask is the free-form escalation used when a relational branch
// yields nothing: a keyword search over the board with the raw question.
func (e *Executor) FallbackTask(question string) agent.RDBTask {
	return agent.RDBTask{
		Name: "search_board_posts",
		Args: map[string]interface{}{"keyword": question},
	}
}

// FormatRows renders rows as a pipe-delimited table: a header from the
// sorted key set of the first record, up to maxRows rows, then an elision
// marker if rows were truncated. Empty input renders to an empty string.
func FormatRows(rows []map[string]interface{}, maxRows int) string {
	if len(rows) == 0 {
		return ""
	}
	if maxRows <= 0 {
		maxRows = 10
	}

	sample := rows
	if len(sample) > maxRows {
		sample = sample[:maxRows]
	}

	headers := make([]string, 0, len(sample[0]))
	for k := range sample[0] {
		headers = append(headers, k)
	}
	sort.Strings(headers)

	lines := []string{strings.Join(headers, " | ")}
	for _, row := range sample {
		cells := make([]string, len(headers))
		for i, h := range headers {
			if v, ok := row[h]; ok && v != nil {
				cells[i] = fmt.Sprintf("%v", v)
			}
		}
		lines = append(lines, strings.Join(cells, " | "))
	}
	if len(rows) > maxRows {
		lines = append(lines, fmt.Sprintf("...(%d more)", len(rows)-maxRows))
	}
	return strings.Join(lines, "\n")
}
