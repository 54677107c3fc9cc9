package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"cryptofolio/internal/cli"
	"cryptofolio/internal/config"
	"cryptofolio/internal/logging"
)

func main() {
	// A missing .env is fine; it only supplies optional overrides.
	_ = godotenv.Load()

	cfg, err := config.Load(configDirArg(os.Args[1:]))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger()

	rootCmd := cli.NewRootCmd(cfg, logger)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// configDirArg extracts --config before cobra parses flags, since the
// config has to be loaded to build the command tree.
func configDirArg(args []string) string {
	for i, arg := range args {
		if arg == "--config" && i+1 < len(args) {
			return args[i+1]
		}
		if len(arg) > len("--config=") && arg[:len("--config=")] == "--config=" {
			return arg[len("--config="):]
		}
	}
	return ""
}
