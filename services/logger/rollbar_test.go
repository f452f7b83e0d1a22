package logsvc

import (
	"bytes"
	"errors"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/tutorhub/core"
	"github.com/trezcool/tutorhub/core/schedule"
)

func newTestLogger() (*RollbarLogger, *bytes.Buffer) {
	buf := new(bytes.Buffer)
	l := NewRollbarLogger(log.New(buf, "", 0), &core.Config{Env: "TEST", Hostname: "localhost", Build: "test"})
	l.Enable(false)
	return l, buf
}

func TestRollbarLogger_prepare(t *testing.T) {
	l, _ := newTestLogger()
	start := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	room := schedule.NewRoomSchedule(schedule.Base{ID: "R1", Name: "Room", Start: start, End: end}, "101", 30, "lab")
	student := schedule.NewStudentSchedule(schedule.Base{ID: "S-1", Name: "Student", Start: start, End: end}, "alice")
	errBoom := errors.New("boom")

	tests := []struct {
		name string
		args []interface{}
		want []interface{}
	}{
		{name: "message only", want: []interface{}{"msg"}},
		{name: "error", args: []interface{}{errBoom}, want: []interface{}{"msg", errBoom}},
		{
			name: "room schedule",
			args: []interface{}{errBoom, room},
			want: []interface{}{"msg", errBoom, map[string]interface{}{
				"schedule_id": "R1", "schedule_kind": "ROOM", "start": start, "end": end, "room_id": "101",
			}},
		},
		{
			name: "student schedule and extras",
			args: []interface{}{student, map[string]interface{}{"attempt": 2}},
			want: []interface{}{"msg", map[string]interface{}{
				"schedule_id": "S-1", "schedule_kind": "STUDENT", "start": start, "end": end, "student_id": "alice", "attempt": 2,
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, l.prepare("msg", tt.args))
		})
	}
}

func TestRollbarLogger_print(t *testing.T) {
	l, buf := newTestLogger()
	start := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	room := schedule.NewRoomSchedule(schedule.Base{ID: "R1", Name: "Room", Start: start, End: start}, "101", 30, "lab")

	l.Warn("skipping schedule R1", errors.New("boom"), room)

	out := buf.String()
	require.NotEmpty(t, out)
	assert.Contains(t, out, "WARN: skipping schedule R1\n")
	assert.Contains(t, out, "boom\n")
	assert.Contains(t, out, "room_id:101")
}
