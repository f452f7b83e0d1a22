package schedule

import (
	"time"
)

// Kind is the discriminator stored with every base schedule row.
type Kind string

const (
	KindRoom    Kind = "ROOM"
	KindStudent Kind = "STUDENT"
)

func (k Kind) String() string { return string(k) }

// Schedule is either a *RoomSchedule or a *StudentSchedule.
// The unexported method keeps other packages from adding variants in memory;
// stored rows with an unknown discriminator are still possible and handled by the repositories.
type Schedule interface {
	Kind() Kind
	Header() *Base
	Courses() []Course

	isSchedule()
}

// Base holds the fields shared by every schedule variant.
type Base struct {
	ID          string    `json:"id" validate:"required,max=64,identifier"`
	Name        string    `json:"name" validate:"required,max=255"`
	Description string    `json:"description" validate:"max=2000"`
	Start       time.Time `json:"start" validate:"required"`
	End         time.Time `json:"end" validate:"required,gtefield=Start"` // UTC
}

func (b *Base) Header() *Base { return b }

// Overlaps reports whether [b.Start, b.End] and [start, end] share at least one instant.
func (b *Base) Overlaps(start, end time.Time) bool {
	return !b.Start.After(end) && !b.End.Before(start)
}

type RoomSchedule struct {
	Base

	RoomID   string `json:"room_id" validate:"required,max=64"`
	Capacity int    `json:"capacity" validate:"gte=0"`
	RoomType string `json:"room_type" validate:"max=64"`

	// derived: courses currently assigned to RoomID
	ScheduledCourses []Course `json:"scheduled_courses" validate:"-"`
}

func (*RoomSchedule) Kind() Kind          { return KindRoom }
func (s *RoomSchedule) Courses() []Course { return s.ScheduledCourses }
func (*RoomSchedule) isSchedule()         {}

type StudentSchedule struct {
	Base

	StudentID string `json:"student_id" validate:"required,max=64"`

	// derived: courses StudentID is enrolled in
	ScheduledCourses []Course `json:"scheduled_courses" validate:"-"`
}

func (*StudentSchedule) Kind() Kind          { return KindStudent }
func (s *StudentSchedule) Courses() []Course { return s.ScheduledCourses }
func (*StudentSchedule) isSchedule()         {}

// Course is a read-only summary of a course owned by the course subsystem.
type Course struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Subject   string    `json:"subject"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	RoomID    string    `json:"room_id"`
}

// NewRoomSchedule builds a room schedule with an empty course list.
func NewRoomSchedule(base Base, roomID string, capacity int, roomType string) *RoomSchedule {
	return &RoomSchedule{
		Base:             normalize(base),
		RoomID:           roomID,
		Capacity:         capacity,
		RoomType:         roomType,
		ScheduledCourses: []Course{},
	}
}

// NewStudentSchedule builds a student schedule with an empty course list.
func NewStudentSchedule(base Base, studentID string) *StudentSchedule {
	return &StudentSchedule{
		Base:             normalize(base),
		StudentID:        studentID,
		ScheduledCourses: []Course{},
	}
}

func normalize(b Base) Base {
	b.Start = b.Start.UTC()
	b.End = b.End.UTC()
	return b
}
