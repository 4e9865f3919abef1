package tools

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Args is the loose argument map a planner task carries. Values arrive from
// JSON, so numbers are float64 and everything else is string-ish.
type Args map[string]interface{}

func (a Args) String(key string) string {
	v, ok := a[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func (a Args) Int(key string) int {
	switch v := a[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func (a Args) Has(key string) bool {
	_, ok := a[key]
	return ok
}

// ToolFunc is one registered read-only query. It must use bound parameters
// for every caller-supplied value.
type ToolFunc func(ctx context.Context, db *gorm.DB, args Args) ([]map[string]interface{}, error)

// Tool couples a read function with its declared parameter schema. The
// executor consults the schema to inject tenant scoping, so no reflection
// over function signatures is ever needed.
type Tool struct {
	Name          string
	NeedsCompany  bool // receives com_id from the tenant context
	NeedsEmployee bool // receives emp_id from the tenant context
	Run           ToolFunc
}

// TenantContext scopes every relational read to one company/employee.
type TenantContext struct {
	CompanyID  string
	EmployeeID string
}

// allowedTables is the fixed allow-list of tables the registry may touch.
// Adding a tool that reads outside this set is a review error.
var allowedTables = map[string]struct{}{
	"approval_line":                 {},
	"attendance":                    {},
	"board":                         {},
	"corporate_car":                 {},
	"corporate_car_reservation":     {},
	"meeting_room":                  {},
	"meeting_room_reservation":      {},
	"shared_equipment":              {},
	"shared_equipment_reservation":  {},
	"emp_schedule":                  {},
	"employee":                      {},
	"todo_list":                     {},
	"mail":                          {},
	"meeting":                       {},
	"meeting_emp":                   {},
	"schedule":                      {},
}

// Registry returns the fixed catalogue of named tools.
func Registry() map[string]Tool {
	catalogue := []Tool{
		{Name: "get_my_todos", NeedsCompany: true, NeedsEmployee: true, Run: getMyTodos},
		{Name: "get_my_mails", NeedsEmployee: true, Run: getMyMails},
		{Name: "get_my_attendance", NeedsCompany: true, NeedsEmployee: true, Run: getMyAttendance},
		{Name: "get_meetings_for_me", NeedsCompany: true, NeedsEmployee: true, Run: getMeetingsForMe},
		{Name: "get_meeting_rooms_availability", NeedsCompany: true, Run: getMeetingRoomReservations},
		{Name: "get_corporate_car_availability", NeedsCompany: true, Run: getCorporateCarReservations},
		{Name: "get_shared_equipment_availability", NeedsCompany: true, Run: getSharedEquipmentReservations},
		{Name: "search_employee_by_name", NeedsCompany: true, Run: searchEmployeeByName},
		{Name: "get_employee_contact", NeedsCompany: true, NeedsEmployee: true, Run: getEmployeeContact},
		{Name: "search_board_posts", NeedsCompany: true, Run: searchBoardPosts},
		{Name: "get_approval_lines", NeedsCompany: true, NeedsEmployee: true, Run: getApprovalLines},
	}

	registry := make(map[string]Tool, len(catalogue))
	for _, tool := range catalogue {
		registry[tool.Name] = tool
	}
	return registry
}
