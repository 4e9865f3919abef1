package tools

import (
	"sort"
	"testing"
)

func TestRegistryCatalogue(t *testing.T) {
	reg := Registry()

	want := []string{
		"get_approval_lines",
		"get_corporate_car_availability",
		"get_employee_contact",
		"get_meeting_rooms_availability",
		"get_meetings_for_me",
		"get_my_attendance",
		"get_my_mails",
		"get_my_todos",
		"get_shared_equipment_availability",
		"search_board_posts",
		"search_employee_by_name",
	}

	var got []string
	for name := range reg {
		got = append(got, name)
	}
	sort.Strings(got)

	if len(got) != len(want) {
		t.Fatalf("registry has %d tools, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("tool[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRegistryToolsReadAllowedTablesOnly(t *testing.T) {
	// Tables each tool's SQL touches. Keep in sync when adding a tool.
	reads := map[string][]string{
		"get_my_todos":                      {"todo_list"},
		"get_my_mails":                      {"mail"},
		"get_my_attendance":                 {"attendance"},
		"get_meetings_for_me":               {"meeting", "meeting_emp"},
		"get_meeting_rooms_availability":    {"meeting_room_reservation", "meeting_room"},
		"get_corporate_car_availability":    {"corporate_car_reservation", "corporate_car"},
		"get_shared_equipment_availability": {"shared_equipment_reservation", "shared_equipment"},
		"search_employee_by_name":           {"employee"},
		"get_employee_contact":              {"employee"},
		"search_board_posts":                {"board"},
		"get_approval_lines":                {"approval_line"},
	}

	for name := range Registry() {
		tables, ok := reads[name]
		if !ok {
			t.Errorf("tool %s has no declared table reads", name)
			continue
		}
		for _, tbl := range tables {
			if _, allowed := allowedTables[tbl]; !allowed {
				t.Errorf("tool %s reads %s which is not on the allow-list", name, tbl)
			}
		}
	}
}

func TestArgsCoercion(t *testing.T) {
	args := Args{
		"limit":   float64(20), // JSON numbers decode as float64
		"keyword": "회의실",
		"count":   7,
	}

	if got := args.Int("limit"); got != 20 {
		t.Errorf("Int(limit) = %d, want 20", got)
	}
	if got := args.Int("count"); got != 7 {
		t.Errorf("Int(count) = %d, want 7", got)
	}
	if got := args.Int("missing"); got != 0 {
		t.Errorf("Int(missing) = %d, want 0", got)
	}
	if got := args.String("keyword"); got != "회의실" {
		t.Errorf("String(keyword) = %q", got)
	}
	if got := args.String("limit"); got != "20" {
		t.Errorf("String(limit) = %q, want coerced text", got)
	}
	if args.Has("missing") {
		t.Error("Has(missing) = true")
	}
}

func TestLimitClause(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{in: 0, want: " LIMIT 50"},
		{in: -3, want: " LIMIT 50"},
		{in: 10, want: " LIMIT 10"},
		{in: 50, want: " LIMIT 50"},
		{in: 500, want: " LIMIT 50"},
	}
	for _, tt := range tests {
		if got := limitClause(tt.in); got != tt.want {
			t.Errorf("limitClause(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
