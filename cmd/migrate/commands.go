package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/cafecrawl/backend/internal/infrastructure/migration"
	"go.uber.org/zap"
)

var errUsage = errors.New("invalid usage")

type offlineCommand func(log *zap.Logger, dir string, args []string) error

// schemaMigrator is the subset of *migration.Migrator the commands drive
type schemaMigrator interface {
	Up() error
	Down() error
	Steps(n int) error
	GoTo(version uint) error
	Version() (uint, bool, error)
	Force(version int) error
	Drop() error
}

type databaseCommand func(log *zap.Logger, m schemaMigrator, args []string) error

var offlineCommands = map[string]offlineCommand{
	"create": createCommand,
	"list":   listCommand,
}

var databaseCommands = map[string]databaseCommand{
	"up":      func(_ *zap.Logger, m schemaMigrator, _ []string) error { return m.Up() },
	"down":    func(_ *zap.Logger, m schemaMigrator, _ []string) error { return m.Down() },
	"step":    stepCommand,
	"goto":    gotoCommand,
	"version": versionCommand,
	"force":   forceCommand,
	"drop":    dropCommand,
}

func createCommand(log *zap.Logger, dir string, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: migrate create <name> [description]", errUsage)
	}
	description := ""
	if len(args) > 1 {
		description = args[1]
	}

	mf, err := migration.CreateMigration(dir, args[0], description)
	if err != nil {
		return err
	}
	log.Info("Migration created",
		zap.Uint("version", mf.Version),
		zap.String("up_file", mf.UpPath),
		zap.String("down_file", mf.DownPath),
	)
	return nil
}

func listCommand(log *zap.Logger, dir string, _ []string) error {
	names, err := migration.ListMigrations(dir)
	if err != nil {
		return err
	}
	log.Info("Available migrations", zap.Int("count", len(names)), zap.Strings("migrations", names))
	return nil
}

func stepCommand(_ *zap.Logger, m schemaMigrator, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: migrate step <n>", errUsage)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n == 0 {
		return fmt.Errorf("invalid step count %q", args[0])
	}
	return m.Steps(n)
}

func gotoCommand(_ *zap.Logger, m schemaMigrator, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: migrate goto <version>", errUsage)
	}
	version, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid version %q", args[0])
	}
	return m.GoTo(uint(version))
}

func versionCommand(log *zap.Logger, m schemaMigrator, _ []string) error {
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	if version == 0 {
		log.Info("No migrations applied")
		return nil
	}
	log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

func forceCommand(_ *zap.Logger, m schemaMigrator, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: migrate force <version>", errUsage)
	}
	version, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid version %q", args[0])
	}
	return m.Force(version)
}

func dropCommand(_ *zap.Logger, m schemaMigrator, args []string) error {
	if len(args) < 1 || (args[0] != "-confirm" && args[0] != "--confirm") {
		return errors.New("drop needs explicit confirmation: migrate drop -confirm")
	}
	return m.Drop()
}
