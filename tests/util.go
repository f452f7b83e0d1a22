package testutil

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/trezcool/tutorhub/core"
	"github.com/trezcool/tutorhub/core/schedule"
	"github.com/trezcool/tutorhub/storage/database"
)

// PrepareDB opens a fresh, migrated in-memory sqlite database closed at the end of the test.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()

	conf := &core.Config{
		Database: core.DatabaseConfig{
			Engine:       database.EngineSQLite,
			Path:         fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
			PingAttempts: 1,
		},
	}
	db, err := database.Open(conf)
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db, NewLogger()); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	return db
}

// Date returns a UTC time on 2024-01-01 at hh:mm.
func Date(hh, mm int) time.Time {
	return time.Date(2024, time.January, 1, hh, mm, 0, 0, time.UTC)
}

func NewRoomSchedule(id, roomID string, capacity int, roomType string, start, end time.Time) *schedule.RoomSchedule {
	return schedule.NewRoomSchedule(schedule.Base{
		ID:          id,
		Name:        "Room " + roomID + " " + id,
		Description: "room booking " + id,
		Start:       start,
		End:         end,
	}, roomID, capacity, roomType)
}

func NewStudentSchedule(id, studentID string, start, end time.Time) *schedule.StudentSchedule {
	return schedule.NewStudentSchedule(schedule.Base{
		ID:    id,
		Name:  "Student " + studentID + " " + id,
		Start: start,
		End:   end,
	}, studentID)
}

// InsertCourse writes a course the way the course subsystem would.
func InsertCourse(t *testing.T, db *sqlx.DB, c schedule.Course) {
	t.Helper()
	var roomID interface{}
	if c.RoomID != "" {
		roomID = c.RoomID
	}
	_, err := db.Exec(
		db.Rebind("INSERT INTO courses (id, name, subject, start_date, end_date, room_id) VALUES (?, ?, ?, ?, ?, ?)"),
		c.ID, c.Name, c.Subject, c.StartDate.UTC(), c.EndDate.UTC(), roomID,
	)
	if err != nil {
		t.Fatalf("InsertCourse() failed: %v", err)
	}
}

func Enroll(t *testing.T, db *sqlx.DB, courseID, studentID string) {
	t.Helper()
	_, err := db.Exec(db.Rebind("INSERT INTO course_enrollments (course_id, student_id) VALUES (?, ?)"), courseID, studentID)
	if err != nil {
		t.Fatalf("Enroll() failed: %v", err)
	}
}

// CountRows counts the rows of table matching "column = value".
func CountRows(t *testing.T, db *sqlx.DB, table, column, value string) int {
	t.Helper()
	var n int
	if err := db.Get(&n, db.Rebind("SELECT COUNT(*) FROM "+table+" WHERE "+column+" = ?"), value); err != nil {
		t.Fatalf("CountRows() failed: %v", err)
	}
	return n
}

type LogEntry struct {
	Level string
	Msg   string
	Args  []interface{}
}

// Logger records every entry instead of printing it.
type Logger struct {
	mu      sync.Mutex
	Entries []LogEntry
}

var _ core.Logger = (*Logger)(nil)

func NewLogger() *Logger { return &Logger{} }

func (l *Logger) log(level, msg string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Entries = append(l.Entries, LogEntry{Level: level, Msg: msg, Args: args})
}

// Has reports whether an entry of level contains substr in its message.
func (l *Logger) Has(level, substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.Entries {
		if e.Level == level && strings.Contains(e.Msg, substr) {
			return true
		}
	}
	return false
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.log("DEBUG", msg, args) }
func (l *Logger) Info(msg string, args ...interface{})  { l.log("INFO", msg, args) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.log("WARN", msg, args) }
func (l *Logger) Error(msg string, args ...interface{}) { l.log("ERROR", msg, args) }
func (l *Logger) Fatal(msg string, args ...interface{}) { l.log("FATAL", msg, args) }
