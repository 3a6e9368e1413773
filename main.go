package main

import (
	"flag"
	"fmt"
	"os"

	"cafe-directory/config"
	"cafe-directory/database"
	"cafe-directory/server"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

func main() {
	commandFlag := flag.String("command", "start", "Command to run: start, migrate or rollback")
	stepsFlag := flag.Int("steps", 1, "Number of migrations to revert with -command rollback")
	flag.Parse()

	if *commandFlag == "" {
		fmt.Println("Usage: go run main.go --command <start|migrate|rollback> [--steps N]")
		os.Exit(1)
	}

	logger.Init(logger.LoggerConfig{
		CallerKey:  "file",
		TimeKey:    "timestamp",
		CallerSkip: 1,
	})

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Invalid configuration", zap.Error(err))
		os.Exit(1)
	}

	switch *commandFlag {
	case "start":
		err = server.StartServer(cfg)
	case "migrate":
		err = withDatabase(cfg, database.Migrate)
	case "rollback":
		err = withDatabase(cfg, func(dbConn *sqlx.DB) error {
			return database.Rollback(dbConn, *stepsFlag)
		})
	default:
		fmt.Printf("Unknown command %q\n", *commandFlag)
		os.Exit(1)
	}

	if err != nil {
		logger.Error("Command failed", zap.String("command", *commandFlag), zap.Error(err))
		os.Exit(1)
	}
}

func withDatabase(cfg *config.Config, run func(*sqlx.DB) error) error {
	dbConn, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	if err := run(dbConn); err != nil {
		return err
	}
	logger.Info("Migrations finished", zap.String("database", cfg.DatabaseURL))
	return nil
}
