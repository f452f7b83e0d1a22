package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/tutorhub/core"
	"github.com/trezcool/tutorhub/core/schedule"
)

type courseRow struct {
	ID        string      `db:"id"`
	Name      string      `db:"name"`
	Subject   string      `db:"subject"`
	StartDate time.Time   `db:"start_date"`
	EndDate   time.Time   `db:"end_date"`
	RoomID    null.String `db:"room_id"`
}

var courseColumns = []string{"c.id", "c.name", "c.subject", "c.start_date", "c.end_date", "c.room_id"}

// courseRepository reads the tables of the course subsystem. It never writes.
type courseRepository struct {
	exec core.DBExecutor
}

var _ schedule.CourseReader = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(exec core.DBExecutor) *courseRepository {
	return &courseRepository{exec: exec}
}

func (repo courseRepository) unmarshal(rows []courseRow) []schedule.Course {
	courses := make([]schedule.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, schedule.Course{
			ID:        row.ID,
			Name:      row.Name,
			Subject:   row.Subject,
			StartDate: row.StartDate.UTC(),
			EndDate:   row.EndDate.UTC(),
			RoomID:    row.RoomID.String,
		})
	}
	return courses
}

func (repo courseRepository) CoursesByRoom(ctx context.Context, roomID string, exec ...core.DBExecutor) ([]schedule.Course, error) {
	exe := getExec(repo.exec, exec)
	q := builder(exe).
		Select(courseColumns...).
		From(tableCourses + " c").
		Where(sq.Eq{"c.room_id": roomID}).
		OrderBy("c.start_date ASC", "c.id ASC")

	var rows []courseRow
	if err := selectRows(ctx, exe, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying courses by room")
	}
	return repo.unmarshal(rows), nil
}

func (repo courseRepository) CoursesByStudent(ctx context.Context, studentID string, exec ...core.DBExecutor) ([]schedule.Course, error) {
	exe := getExec(repo.exec, exec)
	q := builder(exe).
		Select(courseColumns...).
		From(tableCourses + " c").
		Join(tableEnrollments + " e ON e.course_id = c.id").
		Where(sq.Eq{"e.student_id": studentID}).
		OrderBy("c.start_date ASC", "c.id ASC")

	var rows []courseRow
	if err := selectRows(ctx, exe, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying courses by student")
	}
	return repo.unmarshal(rows), nil
}
