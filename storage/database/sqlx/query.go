package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/tutorhub/core"
	"github.com/trezcool/tutorhub/core/schedule"
)

const (
	tableSchedules        = "schedules"
	tableRoomSchedules    = "room_schedules"
	tableStudentSchedules = "student_schedules"
	tableCourses          = "courses"
	tableEnrollments      = "course_enrollments"
)

var (
	scheduleColumns = []string{"s.id", "s.name", "s.description", "s.start_time", "s.end_time", "s.schedule_type"}

	defaultOrdering = []core.DBOrdering{
		{Field: "s.start_time", Ascending: true},
		{Field: "s.id", Ascending: true},
	}
)

// scheduleRow maps the base "schedules" record.
type scheduleRow struct {
	ID           string      `db:"id"`
	Name         string      `db:"name"`
	Description  null.String `db:"description"`
	StartTime    time.Time   `db:"start_time"`
	EndTime      time.Time   `db:"end_time"`
	ScheduleType string      `db:"schedule_type"`
}

func newScheduleRow(s schedule.Schedule) scheduleRow {
	hdr := s.Header()
	return scheduleRow{
		ID:           hdr.ID,
		Name:         hdr.Name,
		Description:  null.NewString(hdr.Description, hdr.Description != ""),
		StartTime:    hdr.Start.UTC(),
		EndTime:      hdr.End.UTC(),
		ScheduleType: s.Kind().String(),
	}
}

func (row scheduleRow) base() schedule.Base {
	return schedule.Base{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description.String,
		Start:       row.StartTime.UTC(),
		End:         row.EndTime.UTC(),
	}
}

func isPostgres(exec core.DBExecutor) bool {
	switch exec.DriverName() {
	case "postgres", "pgx", "cloudsqlpostgres":
		return true
	}
	return false
}

// builder returns a statement builder using the placeholders of the executor's driver.
func builder(exec core.DBExecutor) sq.StatementBuilderType {
	if isPostgres(exec) {
		return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

// containsExpr is a case-sensitive substring match, LIKE being case-insensitive on sqlite.
func containsExpr(exec core.DBExecutor, column, substring string) sq.Sqlizer {
	if isPostgres(exec) {
		return sq.Expr("strpos("+column+", ?) > 0", substring)
	}
	return sq.Expr("instr("+column+", ?) > 0", substring)
}

// overlapsExpr is the closed-interval overlap test between the stored schedule and [start, end].
func overlapsExpr(alias string, start, end time.Time) sq.Sqlizer {
	return sq.And{
		sq.LtOrEq{alias + ".start_time": end.UTC()},
		sq.GtOrEq{alias + ".end_time": start.UTC()},
	}
}

func orderBy(ordering []core.DBOrdering) string {
	orderList := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		orderList = append(orderList, ord.String())
	}
	return strings.Join(orderList, ", ")
}

func selectRows(ctx context.Context, exec core.DBExecutor, dest interface{}, q sq.Sqlizer) error {
	query, args, err := q.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	return exec.SelectContext(ctx, dest, query, args...)
}

func getRow(ctx context.Context, exec core.DBExecutor, dest interface{}, q sq.Sqlizer) error {
	query, args, err := q.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	return exec.GetContext(ctx, dest, query, args...)
}

// execAffected runs a write statement and returns the number of affected rows.
func execAffected(ctx context.Context, exec core.DBExecutor, q sq.Sqlizer) (int64, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}
	res, err := exec.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// expectAffected maps a 0-row write to schedule.ErrNoRowsAffected.
func expectAffected(n int64, err error, msg string) error {
	if err != nil {
		return errors.Wrap(err, msg)
	}
	if n == 0 {
		return errors.Wrap(schedule.ErrNoRowsAffected, msg)
	}
	return nil
}

// trapNoRowsErr maps sql "no rows" err to schedule.ErrNotFound
func trapNoRowsErr(err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return schedule.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func getExec(def core.DBExecutor, exec []core.DBExecutor) core.DBExecutor {
	if len(exec) > 0 && exec[0] != nil {
		return exec[0]
	}
	return def
}
