package schedule

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/tutorhub/core"
)

var (
	// errors
	ErrNotFound       = errors.New("schedule not found")
	ErrNotSaved       = errors.New("schedule could not be saved")
	ErrConflict       = errors.New("schedule overlaps an existing schedule")
	ErrUnknownKind    = errors.New("unknown schedule kind")
	ErrKindMismatch   = errors.New("schedule kind cannot be changed")
	ErrNoRowsAffected = errors.New("no rows affected")
)

type (
	// Repository persists schedules as a base record plus one extension record per variant.
	// Store failures never escape: writes report false and reads report absence or an empty
	// result, the cause being logged by the implementation.
	Repository interface {
		// Register adds the extension responsible for one variant.
		Register(ext Extension)

		FindByID(ctx context.Context, id string) (Schedule, bool)
		FindAll(ctx context.Context) []Schedule
		// FindByTimeRange returns the schedules whose [start, end] overlaps [start, end], bounds included.
		FindByTimeRange(ctx context.Context, start, end time.Time) []Schedule
		// FindByName does a case-sensitive substring match on the name.
		FindByName(ctx context.Context, substring string) []Schedule

		Save(ctx context.Context, s Schedule) bool
		Update(ctx context.Context, s Schedule) bool
		Delete(ctx context.Context, id string) bool
	}

	// Extension persists the variant-specific record of one schedule Kind.
	// Every method runs on the executor handed over by the repository, so that the base and
	// extension writes of one operation share a transaction.
	Extension interface {
		Kind() Kind
		Insert(ctx context.Context, exec core.DBExecutor, s Schedule) error
		// Update and Delete return ErrNoRowsAffected when the extension row does not exist.
		Update(ctx context.Context, exec core.DBExecutor, s Schedule) error
		Delete(ctx context.Context, exec core.DBExecutor, id string) error
		// Load composes the full variant from its base fields; ErrNotFound when the extension row is missing.
		Load(ctx context.Context, exec core.DBExecutor, base Base) (Schedule, error)
	}

	RoomRepository interface {
		FindByRoomID(ctx context.Context, roomID string) []*RoomSchedule
		// FindAvailableRooms returns room schedules of the rooms that have no room schedule overlapping [start, end].
		FindAvailableRooms(ctx context.Context, start, end time.Time) []*RoomSchedule
		FindByRoomType(ctx context.Context, roomType string) []*RoomSchedule
		FindByMinCapacity(ctx context.Context, capacity int) []*RoomSchedule
	}

	StudentRepository interface {
		FindByStudentID(ctx context.Context, studentID string) []*StudentSchedule
	}

	// CourseReader is the read-only surface of the course subsystem.
	CourseReader interface {
		CoursesByRoom(ctx context.Context, roomID string, exec ...core.DBExecutor) ([]Course, error)
		CoursesByStudent(ctx context.Context, studentID string, exec ...core.DBExecutor) ([]Course, error)
	}
)
