package sqlxrepos

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/trezcool/tutorhub/core"
	"github.com/trezcool/tutorhub/core/schedule"
)

type roomRow struct {
	ScheduleID string `db:"schedule_id"`
	RoomID     string `db:"room_id"`
	Capacity   int    `db:"capacity"`
	RoomType   string `db:"room_type"`
}

type roomScheduleRow struct {
	scheduleRow
	roomRow
}

var roomColumns = []string{"rs.schedule_id", "rs.room_id", "rs.capacity", "rs.room_type"}

type roomScheduleRepository struct {
	db      core.DB
	courses schedule.CourseReader
	logger  core.Logger
}

var (
	_ schedule.Extension      = (*roomScheduleRepository)(nil)
	_ schedule.RoomRepository = (*roomScheduleRepository)(nil)
)

func NewRoomScheduleRepository(db core.DB, courses schedule.CourseReader, logger core.Logger) *roomScheduleRepository {
	return &roomScheduleRepository{db: db, courses: courses, logger: logger}
}

func (repo *roomScheduleRepository) Kind() schedule.Kind { return schedule.KindRoom }

func (repo *roomScheduleRepository) cast(s schedule.Schedule) (*schedule.RoomSchedule, error) {
	rs, ok := s.(*schedule.RoomSchedule)
	if !ok {
		return nil, errors.Errorf("room extension cannot store a %s schedule", s.Kind())
	}
	return rs, nil
}

func (repo *roomScheduleRepository) Insert(ctx context.Context, exec core.DBExecutor, s schedule.Schedule) error {
	rs, err := repo.cast(s)
	if err != nil {
		return err
	}
	q := builder(exec).
		Insert(tableRoomSchedules).
		Columns("schedule_id", "room_id", "capacity", "room_type").
		Values(rs.ID, rs.RoomID, rs.Capacity, rs.RoomType)
	n, err := execAffected(ctx, exec, q)
	return expectAffected(n, err, "inserting room schedule")
}

func (repo *roomScheduleRepository) Update(ctx context.Context, exec core.DBExecutor, s schedule.Schedule) error {
	rs, err := repo.cast(s)
	if err != nil {
		return err
	}
	q := builder(exec).
		Update(tableRoomSchedules).
		Set("room_id", rs.RoomID).
		Set("capacity", rs.Capacity).
		Set("room_type", rs.RoomType).
		Where(sq.Eq{"schedule_id": rs.ID})
	n, err := execAffected(ctx, exec, q)
	return expectAffected(n, err, "updating room schedule")
}

func (repo *roomScheduleRepository) Delete(ctx context.Context, exec core.DBExecutor, id string) error {
	n, err := execAffected(ctx, exec, builder(exec).Delete(tableRoomSchedules).Where(sq.Eq{"schedule_id": id}))
	return expectAffected(n, err, "deleting room schedule")
}

func (repo *roomScheduleRepository) Load(ctx context.Context, exec core.DBExecutor, base schedule.Base) (schedule.Schedule, error) {
	var row roomRow
	q := builder(exec).Select(roomColumns...).From(tableRoomSchedules + " rs").Where(sq.Eq{"rs.schedule_id": base.ID})
	if err := getRow(ctx, exec, &row, q); err != nil {
		return nil, trapNoRowsErr(err, "finding room schedule")
	}
	return repo.compose(ctx, exec, base, row), nil
}

// compose builds the variant and attaches the courses assigned to its room.
// Courses are best-effort: a failing course query leaves the list empty.
func (repo *roomScheduleRepository) compose(ctx context.Context, exec core.DBExecutor, base schedule.Base, row roomRow) *schedule.RoomSchedule {
	rs := schedule.NewRoomSchedule(base, row.RoomID, row.Capacity, row.RoomType)
	courses, err := repo.courses.CoursesByRoom(ctx, row.RoomID, exec)
	if err != nil {
		repo.logger.Warn(fmt.Sprintf("loading courses of room %s", row.RoomID), err)
		return rs
	}
	rs.ScheduledCourses = courses
	return rs
}

// query scans joined base + room rows; no index backs the filters besides room_id.
func (repo *roomScheduleRepository) query(ctx context.Context, where sq.Sqlizer) []*schedule.RoomSchedule {
	cols := append(append([]string{}, scheduleColumns...), roomColumns...)
	q := builder(repo.db).
		Select(cols...).
		From(tableSchedules + " s").
		Join(tableRoomSchedules + " rs ON rs.schedule_id = s.id").
		Where(sq.Eq{"s.schedule_type": schedule.KindRoom.String()}).
		OrderBy(orderBy(defaultOrdering))
	if where != nil {
		q = q.Where(where)
	}

	var rows []roomScheduleRow
	if err := selectRows(ctx, repo.db, &rows, q); err != nil {
		repo.logger.Error("querying room schedules", errors.Wrap(err, "querying room schedules"))
		return []*schedule.RoomSchedule{}
	}

	schedules := make([]*schedule.RoomSchedule, 0, len(rows))
	for _, row := range rows {
		schedules = append(schedules, repo.compose(ctx, repo.db, row.base(), row.roomRow))
	}
	return schedules
}

func (repo *roomScheduleRepository) FindByRoomID(ctx context.Context, roomID string) []*schedule.RoomSchedule {
	return repo.query(ctx, sq.Eq{"rs.room_id": roomID})
}

func (repo *roomScheduleRepository) FindAvailableRooms(ctx context.Context, start, end time.Time) []*schedule.RoomSchedule {
	// built with "?" placeholders; the outer builder renumbers them for postgres.
	busy, args, err := sq.
		Select("busy.room_id").
		From(tableRoomSchedules + " busy").
		Join(tableSchedules + " bs ON bs.id = busy.schedule_id").
		Where(overlapsExpr("bs", start, end)).
		ToSql()
	if err != nil {
		repo.logger.Error("building available rooms query", err)
		return []*schedule.RoomSchedule{}
	}
	return repo.query(ctx, sq.Expr("rs.room_id NOT IN ("+busy+")", args...))
}

func (repo *roomScheduleRepository) FindByRoomType(ctx context.Context, roomType string) []*schedule.RoomSchedule {
	return repo.query(ctx, sq.Eq{"rs.room_type": roomType})
}

func (repo *roomScheduleRepository) FindByMinCapacity(ctx context.Context, capacity int) []*schedule.RoomSchedule {
	return repo.query(ctx, sq.GtOrEq{"rs.capacity": capacity})
}
