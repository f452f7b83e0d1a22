package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/tutorhub/core"
	"github.com/trezcool/tutorhub/core/schedule"
	sqlxrepos "github.com/trezcool/tutorhub/storage/database/sqlx"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db       *sqlx.DB
	logger   core.Logger
	out      io.Writer
	repos    sqlxrepos.Repositories
	schedSvc *schedule.Service
	timeout  time.Duration
}

func (cli *commandLine) println(a ...interface{}) {
	_, _ = fmt.Fprintln(cli.out, a...)
}

func (cli *commandLine) printUsage() {
	cli.println("Usage:")
	cli.println("  migrate COMMAND [ARGS]                         - run a migration command (up, down, status, ...)")
	cli.println("  list                                           - list all schedules")
	cli.println("  show -id ID                                    - show one schedule and its courses")
	cli.println("  search -name TEXT                              - schedules whose name contains TEXT (case-sensitive)")
	cli.println("  range -from TIME -to TIME                      - schedules overlapping [from, to]")
	cli.println("  room -id ROOM_ID                               - room schedules of a room")
	cli.println("  student -id STUDENT_ID                         - student schedules of a student")
	cli.println("  available -from TIME -to TIME                  - rooms with no booking overlapping [from, to]")
	cli.println("  addroom -room ROOM_ID -from TIME -to TIME ...  - create a room schedule")
	cli.println("  addstudent -student ID -from TIME -to TIME ... - create a student schedule")
	cli.println("  delete -id ID                                  - delete a schedule")
	cli.println("TIME is RFC3339, e.g. 2024-01-01T08:00:00Z")
}

// newFlagSet returns a flag set that reports errors instead of exiting.
func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func (cli *commandLine) parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return errHelp
		}
		return err
	}
	return nil
}

func parseTime(name, value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("-%s must be an RFC3339 time (got '%s')", name, value)
	}
	return t.UTC(), nil
}

// newContext bounds one command by the configured transaction timeout.
func (cli *commandLine) newContext() (context.Context, context.CancelFunc) {
	if cli.timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), cli.timeout)
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	ctx, cancel := cli.newContext()
	defer cancel()

	cmdArgs := args[2:]
	switch args[1] {
	case "migrate":
		return cli.migrate(cmdArgs)
	case "list":
		return cli.list(ctx)
	case "show":
		return cli.show(ctx, cmdArgs)
	case "search":
		return cli.search(ctx, cmdArgs)
	case "range":
		return cli.timeRange(ctx, cmdArgs)
	case "room":
		return cli.room(ctx, cmdArgs)
	case "student":
		return cli.student(ctx, cmdArgs)
	case "available":
		return cli.available(ctx, cmdArgs)
	case "addroom":
		return cli.addRoom(ctx, cmdArgs)
	case "addstudent":
		return cli.addStudent(ctx, cmdArgs)
	case "delete":
		return cli.delete(ctx, cmdArgs)
	default:
		cli.printUsage()
		return errHelp
	}
}
