package tools

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// maxRowCeiling is the hard cap on rows any single tool may return,
// regardless of what the caller asked for.
const maxRowCeiling = 50

func limitClause(limit int) string {
	if limit <= 0 || limit > maxRowCeiling {
		limit = maxRowCeiling
	}
	return fmt.Sprintf(" LIMIT %d", limit)
}

func scanRows(ctx context.Context, db *gorm.DB, sql string, params ...interface{}) ([]map[string]interface{}, error) {
	var rows []map[string]interface{}
	if err := db.WithContext(ctx).Raw(sql, params...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func getMyTodos(ctx context.Context, db *gorm.DB, args Args) ([]map[string]interface{}, error) {
	sql := "SELECT todo_no, title, is_done, created_at, updated_at " +
		"FROM todo_list WHERE com_id = ? AND emp_id = ?"
	params := []interface{}{args.String("com_id"), args.String("emp_id")}
	if status := args.String("status"); status != "" {
		sql += " AND is_done = ?"
		params = append(params, status)
	}
	sql += limitClause(args.Int("limit"))
	return scanRows(ctx, db, sql, params...)
}

func getMyMails(ctx context.Context, db *gorm.DB, args Args) ([]map[string]interface{}, error) {
	// Sent mail only; recipient state tables are not on the allow-list.
	sql := "SELECT mail_no, title, created_at, sender_id " +
		"FROM mail WHERE sender_id = ?"
	sql += limitClause(args.Int("limit"))
	return scanRows(ctx, db, sql, args.String("emp_id"))
}

func getMyAttendance(ctx context.Context, db *gorm.DB, args Args) ([]map[string]interface{}, error) {
	sql := "SELECT day, type, created_at FROM attendance WHERE com_id = ? AND emp_id = ?"
	params := []interface{}{args.String("com_id"), args.String("emp_id")}
	if start := args.String("start"); start != "" {
		sql += " AND day >= ?"
		params = append(params, start)
	}
	if end := args.String("end"); end != "" {
		sql += " AND day <= ?"
		params = append(params, end)
	}
	sql += limitClause(0)
	return scanRows(ctx, db, sql, params...)
}

func getMeetingsForMe(ctx context.Context, db *gorm.DB, args Args) ([]map[string]interface{}, error) {
	sql := "SELECT m.meet_no, m.title, m.started_at, m.status " +
		"FROM meeting m JOIN meeting_emp me ON m.meet_no = me.meet_no " +
		"WHERE m.com_id = ? AND me.emp_id = ?"
	params := []interface{}{args.String("com_id"), args.String("emp_id")}
	if start := args.String("start"); start != "" {
		sql += " AND m.started_at >= ?"
		params = append(params, start)
	}
	if end := args.String("end"); end != "" {
		sql += " AND m.started_at <= ?"
		params = append(params, end)
	}
	sql += limitClause(0)
	return scanRows(ctx, db, sql, params...)
}

func getMeetingRoomReservations(ctx context.Context, db *gorm.DB, args Args) ([]map[string]interface{}, error) {
	sql := "SELECT mr.room_no, r.room_name, mr.started_at, mr.ended_at, mr.resv_emp " +
		"FROM meeting_room_reservation mr " +
		"LEFT JOIN meeting_room r ON mr.room_no = r.room_no " +
		"WHERE mr.com_id = ? " +
		"ORDER BY mr.started_at DESC"
	sql += limitClause(args.Int("limit"))
	return scanRows(ctx, db, sql, args.String("com_id"))
}

func getCorporateCarReservations(ctx context.Context, db *gorm.DB, args Args) ([]map[string]interface{}, error) {
	sql := "SELECT cr.car_no, c.car_name, cr.started_at, cr.ended_at, cr.resv_emp " +
		"FROM corporate_car_reservation cr " +
		"LEFT JOIN corporate_car c ON cr.car_no = c.car_no " +
		"WHERE cr.com_id = ? " +
		"ORDER BY cr.started_at DESC"
	sql += limitClause(args.Int("limit"))
	return scanRows(ctx, db, sql, args.String("com_id"))
}

func getSharedEquipmentReservations(ctx context.Context, db *gorm.DB, args Args) ([]map[string]interface{}, error) {
	sql := "SELECT sr.eq_no, e.eq_name, sr.started_at, sr.ended_at, sr.resv_emp " +
		"FROM shared_equipment_reservation sr " +
		"LEFT JOIN shared_equipment e ON sr.eq_no = e.eq_no " +
		"WHERE sr.com_id = ? " +
		"ORDER BY sr.started_at DESC"
	sql += limitClause(args.Int("limit"))
	return scanRows(ctx, db, sql, args.String("com_id"))
}

func searchEmployeeByName(ctx context.Context, db *gorm.DB, args Args) ([]map[string]interface{}, error) {
	sql := "SELECT emp_name, email, phone, work_phone, emp_id, dep_no, pos_no " +
		"FROM employee WHERE com_id = ? AND emp_name LIKE ?"
	sql += limitClause(args.Int("limit"))
	return scanRows(ctx, db, sql, args.String("com_id"), "%"+args.String("name")+"%")
}

func getEmployeeContact(ctx context.Context, db *gorm.DB, args Args) ([]map[string]interface{}, error) {
	sql := "SELECT emp_name, email, phone, work_phone, emp_id, dep_no, pos_no " +
		"FROM employee WHERE com_id = ? AND emp_id = ? LIMIT 5"
	return scanRows(ctx, db, sql, args.String("com_id"), args.String("emp_id"))
}

func searchBoardPosts(ctx context.Context, db *gorm.DB, args Args) ([]map[string]interface{}, error) {
	sql := "SELECT board_no, title, created_at, emp_id " +
		"FROM board WHERE com_id = ? AND (title LIKE ? OR contents LIKE ?)"
	kw := "%" + args.String("keyword") + "%"
	sql += limitClause(args.Int("limit"))
	return scanRows(ctx, db, sql, args.String("com_id"), kw, kw)
}

func getApprovalLines(ctx context.Context, db *gorm.DB, args Args) ([]map[string]interface{}, error) {
	sql := "SELECT apprl_no, doc_no, appr_stat, ended_at " +
		"FROM approval_line WHERE com_id = ? AND emp_id = ? " +
		"ORDER BY ended_at DESC"
	sql += limitClause(args.Int("limit"))
	return scanRows(ctx, db, sql, args.String("com_id"), args.String("emp_id"))
}
