package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"task-manager/internal/config"
	"task-manager/internal/logging"
	"task-manager/internal/password"
	"task-manager/internal/repository"
	"task-manager/internal/service"
)

// app holds everything a subcommand needs. It is built once in the root
// command's pre-run hook and closed in its post-run hook.
type app struct {
	cfg      config.Config
	log      *slog.Logger
	store    *repository.Store
	users    *service.UserService
	statuses *service.TaskStatusService
	labels   *service.LabelService
	tasks    *service.TaskService
	close    func() error
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	log := logging.Init(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	db, err := repository.NewDB(cfg.DatabaseURL, logging.GormLogger(log))
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}

	store := repository.NewStore(db)
	return &app{
		cfg:      cfg,
		log:      log,
		store:    store,
		users:    service.NewUserService(store, password.NewBcrypt(cfg.BcryptCost), log),
		statuses: service.NewTaskStatusService(store, log),
		labels:   service.NewLabelService(store, log),
		tasks:    service.NewTaskService(store, log),
		close:    sqlDB.Close,
	}, nil
}

func newRootCmd() *cobra.Command {
	var a *app

	root := &cobra.Command{
		Use:           "taskmanager",
		Short:         "Task manager - statuses, labels, users and tasks over SQLite",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			a, err = newApp()
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a == nil {
				return nil
			}
			return a.close()
		},
	}

	get := func() *app { return a }
	root.AddCommand(seedCmd(get), taskCmd(get))

	return root
}
