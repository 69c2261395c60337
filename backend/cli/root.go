// Package cli wires the ibam command tree.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"ibam/backend/config"
	"ibam/backend/utils"
)

// Env is what every subcommand needs. Fields are filled lazily so that
// commands like --help never touch the database.
type Env struct {
	Cfg        *config.Config
	Curriculum config.Curriculum
	Log        *utils.Logger

	// OpenDB is replaceable in tests.
	OpenDB func(cfg *config.Config, log *utils.Logger) (*gorm.DB, error)
}

func NewRootCmd(env *Env) *cobra.Command {
	root := &cobra.Command{
		Use:           "ibam",
		Short:         "IBAM learning dashboard backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serve := newServeCmd(env)
	root.AddCommand(serve, newMigrateCmd(env), newSeedCmd(env))
	// Running the binary without a subcommand starts the server.
	root.RunE = serve.RunE
	return root
}

// Load reads configuration, the curriculum and builds the logger.
func Load() (*Env, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cur, err := config.LoadCurriculum(cfg.CurriculumFile)
	if err != nil {
		return nil, err
	}
	logger, err := utils.InitLogger(utils.LoggerConfig{Format: cfg.LogFormat, Level: cfg.LogLevel})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return &Env{Cfg: cfg, Curriculum: cur, Log: logger, OpenDB: utils.InitDB}, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
