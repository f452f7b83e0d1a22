package sqlxrepos

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/trezcool/tutorhub/core"
	"github.com/trezcool/tutorhub/core/schedule"
)

type studentRow struct {
	ScheduleID string `db:"schedule_id"`
	StudentID  string `db:"student_id"`
}

type studentScheduleRow struct {
	scheduleRow
	studentRow
}

var studentColumns = []string{"ss.schedule_id", "ss.student_id"}

type studentScheduleRepository struct {
	db      core.DB
	courses schedule.CourseReader
	logger  core.Logger
}

var (
	_ schedule.Extension         = (*studentScheduleRepository)(nil)
	_ schedule.StudentRepository = (*studentScheduleRepository)(nil)
)

func NewStudentScheduleRepository(db core.DB, courses schedule.CourseReader, logger core.Logger) *studentScheduleRepository {
	return &studentScheduleRepository{db: db, courses: courses, logger: logger}
}

func (repo *studentScheduleRepository) Kind() schedule.Kind { return schedule.KindStudent }

func (repo *studentScheduleRepository) cast(s schedule.Schedule) (*schedule.StudentSchedule, error) {
	ss, ok := s.(*schedule.StudentSchedule)
	if !ok {
		return nil, errors.Errorf("student extension cannot store a %s schedule", s.Kind())
	}
	return ss, nil
}

func (repo *studentScheduleRepository) Insert(ctx context.Context, exec core.DBExecutor, s schedule.Schedule) error {
	ss, err := repo.cast(s)
	if err != nil {
		return err
	}
	q := builder(exec).
		Insert(tableStudentSchedules).
		Columns("schedule_id", "student_id").
		Values(ss.ID, ss.StudentID)
	n, err := execAffected(ctx, exec, q)
	return expectAffected(n, err, "inserting student schedule")
}

func (repo *studentScheduleRepository) Update(ctx context.Context, exec core.DBExecutor, s schedule.Schedule) error {
	ss, err := repo.cast(s)
	if err != nil {
		return err
	}
	q := builder(exec).
		Update(tableStudentSchedules).
		Set("student_id", ss.StudentID).
		Where(sq.Eq{"schedule_id": ss.ID})
	n, err := execAffected(ctx, exec, q)
	return expectAffected(n, err, "updating student schedule")
}

func (repo *studentScheduleRepository) Delete(ctx context.Context, exec core.DBExecutor, id string) error {
	n, err := execAffected(ctx, exec, builder(exec).Delete(tableStudentSchedules).Where(sq.Eq{"schedule_id": id}))
	return expectAffected(n, err, "deleting student schedule")
}

func (repo *studentScheduleRepository) Load(ctx context.Context, exec core.DBExecutor, base schedule.Base) (schedule.Schedule, error) {
	var row studentRow
	q := builder(exec).Select(studentColumns...).From(tableStudentSchedules + " ss").Where(sq.Eq{"ss.schedule_id": base.ID})
	if err := getRow(ctx, exec, &row, q); err != nil {
		return nil, trapNoRowsErr(err, "finding student schedule")
	}
	return repo.compose(ctx, exec, base, row), nil
}

func (repo *studentScheduleRepository) compose(ctx context.Context, exec core.DBExecutor, base schedule.Base, row studentRow) *schedule.StudentSchedule {
	ss := schedule.NewStudentSchedule(base, row.StudentID)
	courses, err := repo.courses.CoursesByStudent(ctx, row.StudentID, exec)
	if err != nil {
		repo.logger.Warn(fmt.Sprintf("loading courses of student %s", row.StudentID), err)
		return ss
	}
	ss.ScheduledCourses = courses
	return ss
}

func (repo *studentScheduleRepository) FindByStudentID(ctx context.Context, studentID string) []*schedule.StudentSchedule {
	cols := append(append([]string{}, scheduleColumns...), studentColumns...)
	q := builder(repo.db).
		Select(cols...).
		From(tableSchedules + " s").
		Join(tableStudentSchedules + " ss ON ss.schedule_id = s.id").
		Where(sq.Eq{"s.schedule_type": schedule.KindStudent.String(), "ss.student_id": studentID}).
		OrderBy(orderBy(defaultOrdering))

	var rows []studentScheduleRow
	if err := selectRows(ctx, repo.db, &rows, q); err != nil {
		repo.logger.Error(fmt.Sprintf("querying schedules of student %s", studentID), err)
		return []*schedule.StudentSchedule{}
	}

	schedules := make([]*schedule.StudentSchedule, 0, len(rows))
	for _, row := range rows {
		schedules = append(schedules, repo.compose(ctx, repo.db, row.base(), row.studentRow))
	}
	return schedules
}
