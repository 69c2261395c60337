package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ibam/backend/routes"
)

func newServeCmd(env *Env) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if port == "" {
				port = env.Cfg.ServerPort
			}
			db, err := env.OpenDB(env.Cfg, env.Log)
			if err != nil {
				return err
			}
			defer closeDB(db)

			app := routes.NewApp(db, env.Cfg, env.Curriculum, env.Log)

			errCh := make(chan error, 1)
			go func() {
				env.Log.Info("listening", "port", port)
				errCh <- app.Listen(":" + port)
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)

			select {
			case err := <-errCh:
				return err
			case sig := <-quit:
				env.Log.Info("shutting down", "signal", sig.String())
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return app.ShutdownWithContext(ctx)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (defaults to SERVER_PORT)")
	return cmd
}
