package sqlxrepos_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/tutorhub/core/schedule"
	sqlxrepos "github.com/trezcool/tutorhub/storage/database/sqlx"
	"github.com/trezcool/tutorhub/tests"
)

func roomIDs(schedules []*schedule.RoomSchedule) []string {
	out := make([]string, 0, len(schedules))
	for _, s := range schedules {
		out = append(out, s.ID)
	}
	return out
}

func seedRooms(t *testing.T, repos sqlxrepos.Repositories) {
	t.Helper()
	for _, s := range []schedule.Schedule{
		testutil.NewRoomSchedule("R1", "101", 30, "lecture", testutil.Date(8, 0), testutil.Date(10, 0)),
		testutil.NewRoomSchedule("R2", "101", 30, "lecture", testutil.Date(13, 0), testutil.Date(14, 0)),
		testutil.NewRoomSchedule("R3", "202", 12, "lab", testutil.Date(9, 0), testutil.Date(11, 0)),
		testutil.NewRoomSchedule("R4", "303", 80, "Lecture", testutil.Date(15, 0), testutil.Date(16, 0)),
		testutil.NewStudentSchedule("S-1", "101", testutil.Date(8, 0), testutil.Date(10, 0)),
	} {
		require.True(t, repos.Schedules.Save(ctx, s))
	}
}

func TestRoomScheduleRepository_FindByRoomID(t *testing.T) {
	_, repos, _ := setup(t)
	seedRooms(t, repos)

	tests := []struct {
		name   string
		roomID string
		want   []string
	}{
		{name: "two bookings", roomID: "101", want: []string{"R1", "R2"}},
		{name: "one booking", roomID: "202", want: []string{"R3"}},
		{name: "no booking", roomID: "404", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := repos.Rooms.FindByRoomID(ctx, tt.roomID)
			assert.ElementsMatch(t, tt.want, roomIDs(got))
			for _, s := range got {
				assert.Equal(t, tt.roomID, s.RoomID)
			}
		})
	}
}

func TestRoomScheduleRepository_FindByRoomType(t *testing.T) {
	_, repos, _ := setup(t)
	seedRooms(t, repos)

	tests := []struct {
		name     string
		roomType string
		want     []string
	}{
		{name: "lecture", roomType: "lecture", want: []string{"R1", "R2"}},
		{name: "case-sensitive", roomType: "Lecture", want: []string{"R4"}},
		{name: "lab", roomType: "lab", want: []string{"R3"}},
		{name: "unknown", roomType: "gym", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ElementsMatch(t, tt.want, roomIDs(repos.Rooms.FindByRoomType(ctx, tt.roomType)))
		})
	}
}

func TestRoomScheduleRepository_FindByMinCapacity(t *testing.T) {
	_, repos, _ := setup(t)
	seedRooms(t, repos)

	tests := []struct {
		name     string
		capacity int
		want     []string
	}{
		{name: "all", capacity: 0, want: []string{"R1", "R2", "R3", "R4"}},
		{name: "inclusive bound", capacity: 30, want: []string{"R1", "R2", "R4"}},
		{name: "large", capacity: 50, want: []string{"R4"}},
		{name: "none", capacity: 81, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ElementsMatch(t, tt.want, roomIDs(repos.Rooms.FindByMinCapacity(ctx, tt.capacity)))
		})
	}
}

func TestRoomScheduleRepository_FindAvailableRooms(t *testing.T) {
	_, repos, _ := setup(t)
	seedRooms(t, repos)

	tests := []struct {
		name       string
		start, end time.Time
		want       []string
	}{
		// room 101 is busy 08-10 and 13-14, room 202 09-11, room 303 15-16
		{name: "early morning", start: testutil.Date(6, 0), end: testutil.Date(7, 0), want: []string{"R1", "R2", "R3", "R4"}},
		{name: "room 101 busy", start: testutil.Date(9, 30), end: testutil.Date(9, 45), want: []string{"R4"}},
		{name: "touching bookings", start: testutil.Date(11, 0), end: testutil.Date(13, 0), want: []string{"R4"}},
		{name: "lunch", start: testutil.Date(11, 30), end: testutil.Date(12, 30), want: []string{"R1", "R2", "R3", "R4"}},
		{name: "afternoon", start: testutil.Date(14, 30), end: testutil.Date(15, 30), want: []string{"R1", "R2", "R3"}},
		{name: "whole day", start: testutil.Date(0, 0), end: testutil.Date(23, 0), want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ElementsMatch(t, tt.want, roomIDs(repos.Rooms.FindAvailableRooms(ctx, tt.start, tt.end)))
		})
	}
}

func TestRoomScheduleRepository_Courses(t *testing.T) {
	db, repos, _ := setup(t)
	seedRooms(t, repos)

	course := schedule.Course{
		ID: "C1", Name: "Organic chemistry", Subject: "chemistry", RoomID: "202",
		StartDate: time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC),
	}
	testutil.InsertCourse(t, db, course)

	got := repos.Rooms.FindByRoomID(ctx, "202")
	require.Len(t, got, 1)
	assert.Equal(t, []schedule.Course{course}, got[0].Courses())

	others := repos.Rooms.FindByRoomID(ctx, "101")
	require.Len(t, others, 2)
	for _, s := range others {
		assert.Empty(t, s.Courses())
		assert.NotNil(t, s.Courses())
	}
}
