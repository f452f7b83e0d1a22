package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/tutorhub/core"
	"github.com/trezcool/tutorhub/core/schedule"
)

func (cli *commandLine) printSchedule(s schedule.Schedule) {
	hdr := s.Header()
	line := fmt.Sprintf("%s\t%s\t%s\t%s\t%s", hdr.ID, s.Kind(), hdr.Start.Format(time.RFC3339), hdr.End.Format(time.RFC3339), hdr.Name)
	switch v := s.(type) {
	case *schedule.RoomSchedule:
		line += fmt.Sprintf("\troom=%s capacity=%d type=%s", v.RoomID, v.Capacity, v.RoomType)
	case *schedule.StudentSchedule:
		line += fmt.Sprintf("\tstudent=%s", v.StudentID)
	}
	cli.println(line)
}

func (cli *commandLine) printSchedules(schedules []schedule.Schedule) {
	for _, s := range schedules {
		cli.printSchedule(s)
	}
	cli.println(fmt.Sprintf("(%d schedules)", len(schedules)))
}

func roomSchedules(in []*schedule.RoomSchedule) []schedule.Schedule {
	out := make([]schedule.Schedule, 0, len(in))
	for _, s := range in {
		out = append(out, s)
	}
	return out
}

func studentSchedules(in []*schedule.StudentSchedule) []schedule.Schedule {
	out := make([]schedule.Schedule, 0, len(in))
	for _, s := range in {
		out = append(out, s)
	}
	return out
}

// requiredString parses args and fails with errHelp when the named flag is empty.
func (cli *commandLine) requiredString(fs *flag.FlagSet, args []string, name, usage string) (string, error) {
	val := fs.String(name, "", usage)
	if err := cli.parse(fs, args); err != nil {
		return "", err
	}
	if core.CleanString(*val) == "" {
		fs.Usage()
		return "", errHelp
	}
	return core.CleanString(*val), nil
}

type rangeFlags struct {
	from *string
	to   *string
}

func newRangeFlags(fs *flag.FlagSet) rangeFlags {
	return rangeFlags{
		from: fs.String("from", "", "Start of the period (RFC3339)."),
		to:   fs.String("to", "", "End of the period (RFC3339)."),
	}
}

func (rf rangeFlags) parse(fs *flag.FlagSet) (time.Time, time.Time, error) {
	if *rf.from == "" || *rf.to == "" {
		fs.Usage()
		return time.Time{}, time.Time{}, errHelp
	}
	start, err := parseTime("from", *rf.from)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseTime("to", *rf.to)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func (cli *commandLine) list(ctx context.Context) error {
	cli.printSchedules(cli.repos.Schedules.FindAll(ctx))
	return nil
}

func (cli *commandLine) show(ctx context.Context, args []string) error {
	id, err := cli.requiredString(cli.newFlagSet("show"), args, "id", "The schedule ID.")
	if err != nil {
		return err
	}
	s, err := cli.schedSvc.Get(ctx, id)
	if err != nil {
		return err
	}
	cli.printSchedule(s)
	if desc := s.Header().Description; desc != "" {
		cli.println("  " + desc)
	}
	for _, c := range s.Courses() {
		cli.println(fmt.Sprintf("  course %s\t%s\t%s\t%s - %s", c.ID, c.Name, c.Subject, c.StartDate.Format("2006-01-02"), c.EndDate.Format("2006-01-02")))
	}
	return nil
}

func (cli *commandLine) search(ctx context.Context, args []string) error {
	name, err := cli.requiredString(cli.newFlagSet("search"), args, "name", "Text contained in the schedule name (case-sensitive).")
	if err != nil {
		return err
	}
	cli.printSchedules(cli.repos.Schedules.FindByName(ctx, name))
	return nil
}

func (cli *commandLine) timeRange(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("range")
	rf := newRangeFlags(fs)
	if err := cli.parse(fs, args); err != nil {
		return err
	}
	start, end, err := rf.parse(fs)
	if err != nil {
		return err
	}
	cli.printSchedules(cli.repos.Schedules.FindByTimeRange(ctx, start, end))
	return nil
}

func (cli *commandLine) room(ctx context.Context, args []string) error {
	roomID, err := cli.requiredString(cli.newFlagSet("room"), args, "id", "The room ID.")
	if err != nil {
		return err
	}
	cli.printSchedules(roomSchedules(cli.repos.Rooms.FindByRoomID(ctx, roomID)))
	return nil
}

func (cli *commandLine) student(ctx context.Context, args []string) error {
	studentID, err := cli.requiredString(cli.newFlagSet("student"), args, "id", "The student ID.")
	if err != nil {
		return err
	}
	cli.printSchedules(studentSchedules(cli.repos.Students.FindByStudentID(ctx, studentID)))
	return nil
}

func (cli *commandLine) available(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("available")
	rf := newRangeFlags(fs)
	if err := cli.parse(fs, args); err != nil {
		return err
	}
	start, end, err := rf.parse(fs)
	if err != nil {
		return err
	}
	cli.printSchedules(roomSchedules(cli.repos.Rooms.FindAvailableRooms(ctx, start, end)))
	return nil
}

type baseFlags struct {
	id          *string
	name        *string
	description *string
	rangeFlags
}

func newBaseFlags(fs *flag.FlagSet) baseFlags {
	return baseFlags{
		id:          fs.String("id", "", "The schedule ID (generated when empty)."),
		name:        fs.String("name", "", "The schedule name."),
		description: fs.String("description", "", "An optional description."),
		rangeFlags:  newRangeFlags(fs),
	}
}

func (bf baseFlags) parse(fs *flag.FlagSet, defaultName string) (schedule.Base, error) {
	start, end, err := bf.rangeFlags.parse(fs)
	if err != nil {
		return schedule.Base{}, err
	}
	base := schedule.Base{
		ID:          core.CleanString(*bf.id),
		Name:        core.CleanString(*bf.name),
		Description: *bf.description,
		Start:       start,
		End:         end,
	}
	if base.ID == "" {
		base.ID = uuid.NewString()
	}
	if base.Name == "" {
		base.Name = defaultName
	}
	return base, nil
}

func (cli *commandLine) create(ctx context.Context, s schedule.Schedule) error {
	if err := cli.schedSvc.Create(ctx, s); err != nil {
		return err
	}
	cli.println("created " + s.Header().ID)
	return nil
}

func (cli *commandLine) addRoom(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("addroom")
	bf := newBaseFlags(fs)
	roomID := fs.String("room", "", "The room ID.")
	capacity := fs.Int("capacity", 0, "The room capacity.")
	roomType := fs.String("type", "", "The room category (lecture, lab, ...).")
	if err := cli.parse(fs, args); err != nil {
		return err
	}
	base, err := bf.parse(fs, "Room "+*roomID)
	if err != nil {
		return err
	}
	return cli.create(ctx, schedule.NewRoomSchedule(base, core.CleanString(*roomID), *capacity, core.CleanString(*roomType)))
}

func (cli *commandLine) addStudent(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("addstudent")
	bf := newBaseFlags(fs)
	studentID := fs.String("student", "", "The student ID.")
	if err := cli.parse(fs, args); err != nil {
		return err
	}
	base, err := bf.parse(fs, "Student "+*studentID)
	if err != nil {
		return err
	}
	return cli.create(ctx, schedule.NewStudentSchedule(base, core.CleanString(*studentID)))
}

func (cli *commandLine) delete(ctx context.Context, args []string) error {
	id, err := cli.requiredString(cli.newFlagSet("delete"), args, "id", "The schedule ID.")
	if err != nil {
		return err
	}
	if err = cli.schedSvc.Delete(ctx, id); err != nil {
		return err
	}
	cli.println("deleted " + id)
	return nil
}
