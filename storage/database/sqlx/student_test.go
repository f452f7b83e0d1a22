package sqlxrepos_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/tutorhub/core/schedule"
	"github.com/trezcool/tutorhub/tests"
)

func TestStudentScheduleRepository_FindByStudentID(t *testing.T) {
	db, repos, _ := setup(t)

	for _, s := range []schedule.Schedule{
		testutil.NewStudentSchedule("S-1", "alice", testutil.Date(8, 0), testutil.Date(9, 0)),
		testutil.NewStudentSchedule("S-2", "alice", testutil.Date(10, 0), testutil.Date(11, 0)),
		testutil.NewStudentSchedule("S-3", "bob", testutil.Date(8, 0), testutil.Date(9, 0)),
		testutil.NewRoomSchedule("R1", "alice", 10, "lab", testutil.Date(8, 0), testutil.Date(9, 0)),
	} {
		require.True(t, repos.Schedules.Save(ctx, s))
	}

	course := schedule.Course{
		ID: "C1", Name: "Statistics", Subject: "math",
		StartDate: time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 3, 29, 0, 0, 0, 0, time.UTC),
	}
	testutil.InsertCourse(t, db, course)
	testutil.Enroll(t, db, "C1", "alice")

	tests := []struct {
		name        string
		studentID   string
		want        []string
		wantCourses []schedule.Course
	}{
		{name: "enrolled student", studentID: "alice", want: []string{"S-1", "S-2"}, wantCourses: []schedule.Course{course}},
		{name: "no enrollment", studentID: "bob", want: []string{"S-3"}, wantCourses: []schedule.Course{}},
		{name: "unknown student", studentID: "carol", want: []string{}},
		{name: "case-sensitive", studentID: "Alice", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := repos.Students.FindByStudentID(ctx, tt.studentID)

			ids := make([]string, 0, len(got))
			for _, s := range got {
				ids = append(ids, s.ID)
				assert.Equal(t, tt.studentID, s.StudentID)
				assert.Equal(t, tt.wantCourses, s.Courses())
			}
			assert.ElementsMatch(t, tt.want, ids)
		})
	}
}

func TestCourseRepository(t *testing.T) {
	db, repos, _ := setup(t)

	algebra := schedule.Course{
		ID: "C1", Name: "Algebra", Subject: "math", RoomID: "101",
		StartDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	geometry := schedule.Course{
		ID: "C2", Name: "Geometry", Subject: "math", RoomID: "101",
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	remote := schedule.Course{
		ID: "C3", Name: "Remote reading", Subject: "english",
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, c := range []schedule.Course{algebra, geometry, remote} {
		testutil.InsertCourse(t, db, c)
	}
	testutil.Enroll(t, db, "C1", "alice")
	testutil.Enroll(t, db, "C3", "alice")

	t.Run("by room", func(t *testing.T) {
		got, err := repos.Courses.CoursesByRoom(ctx, "101")
		require.NoError(t, err)
		assert.Equal(t, []schedule.Course{geometry, algebra}, got)
	})

	t.Run("by room without courses", func(t *testing.T) {
		got, err := repos.Courses.CoursesByRoom(ctx, "404")
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("by student", func(t *testing.T) {
		got, err := repos.Courses.CoursesByStudent(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, []schedule.Course{remote, algebra}, got)
	})

	t.Run("by student with explicit executor", func(t *testing.T) {
		got, err := repos.Courses.CoursesByStudent(ctx, "bob", db)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
