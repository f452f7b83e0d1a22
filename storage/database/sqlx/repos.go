package sqlxrepos

import (
	"github.com/trezcool/tutorhub/core"
	"github.com/trezcool/tutorhub/core/schedule"
)

// Repositories groups the schedule repository with its registered extensions.
type Repositories struct {
	Schedules schedule.Repository
	Rooms     schedule.RoomRepository
	Students  schedule.StudentRepository
	Courses   schedule.CourseReader
}

func NewRepositories(db core.DB, logger core.Logger) Repositories {
	courses := NewCourseRepository(db)
	rooms := NewRoomScheduleRepository(db, courses, logger)
	students := NewStudentScheduleRepository(db, courses, logger)
	return Repositories{
		Schedules: NewScheduleRepository(db, logger, rooms, students),
		Rooms:     rooms,
		Students:  students,
		Courses:   courses,
	}
}
