package main

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/tutorhub/core"
	"github.com/trezcool/tutorhub/core/schedule"
	logsvc "github.com/trezcool/tutorhub/services/logger"
	"github.com/trezcool/tutorhub/storage/database"
	sqlxrepos "github.com/trezcool/tutorhub/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)
	logger.Enable(!conf.Debug)

	// set up DB; migrations are left to the "migrate" command
	errAndDie(logger, database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(logger, err)
	defer db.Close()

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)

	repos := sqlxrepos.NewRepositories(db, logger)

	// start CLI
	cli := commandLine{
		db:      db,
		logger:  logger,
		out:     os.Stdout,
		repos:   repos,
		timeout: conf.TxTimeout,
		schedSvc: schedule.NewService(schedule.ServiceDeps{
			Repo:       repos.Schedules,
			Rooms:      repos.Rooms,
			Students:   repos.Students,
			Conf:       conf,
			Logger:     logger,
			Validate:   validate,
			Translator: translator,
		}),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error("admin command failed", err)
		}
		db.Close()
		os.Exit(1)
	}
}

func errAndDie(logger core.Logger, err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
