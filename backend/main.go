package main

import (
	"fmt"
	"os"

	"ibam/backend/cli"
)

func main() {
	env, err := cli.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer env.Log.Sync()

	if err := cli.NewRootCmd(env).Execute(); err != nil {
		env.Log.Error("command failed", "error", err)
		env.Log.Sync()
		os.Exit(1)
	}
}
