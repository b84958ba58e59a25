package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dkozyrev/docvault/internal/buildinfo"
	"github.com/dkozyrev/docvault/internal/cli"
	"github.com/dkozyrev/docvault/internal/config"
	"github.com/dkozyrev/docvault/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stderr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sigs
		cancel()
	}()

	cfg := config.LoadConfig()
	logger := logging.NewSlog(os.Stderr)

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx, subcommandArgs(os.Args[1:])); err != nil {
		log.Fatalf("%v", err)
	}
}

// subcommandArgs strips the global flags parsed by the config package and
// returns the subcommand with its arguments. Filtering stops at the first
// non-flag token: everything after the subcommand is positional, including
// dash-prefixed values like the bare "-" of `mv <doc-id> -`.
func subcommandArgs(args []string) []string {
	valueFlags := map[string]struct{}{
		"-dir": {}, "-i": {}, "-d": {}, "-k": {}, "-kf": {}, "-blob": {},
		"-b": {}, "-g": {}, "-e": {}, "-u": {}, "-p": {}, "-j": {},
		"-c": {}, "-config": {},
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if _, ok := valueFlags[arg]; ok {
			i++ // skip the flag value
			continue
		}
		if arg != "-" && len(arg) > 0 && arg[0] == '-' {
			continue // "-f=value" form
		}
		rest := make([]string, 0, len(args)-i)
		return append(rest, args[i:]...)
	}
	return nil
}
