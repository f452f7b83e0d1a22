package main

import (
	"github.com/trezcool/tutorhub/storage/database"
)

var migrateRunFunc = database.RunMigrationCommand // mockable

func (cli *commandLine) migrate(args []string) error {
	if len(args) == 0 {
		cli.printMigrateUsage()
		return errHelp
	}
	return migrateRunFunc(cli.db, cli.logger, args[0], args[1:]...)
}

func (cli *commandLine) printMigrateUsage() {
	cli.println("Usage:")
	cli.println("  migrate COMMAND [ARGS] - run a migration command")
	cli.println("Commands: up, up-by-one, up-to VERSION, down, down-to VERSION, redo, reset, status, version, fix")
}
