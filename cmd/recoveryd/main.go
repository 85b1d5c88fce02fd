package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/seedrescue/recoveryd/internal/config"
)

func main() {
	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))
	config.Validate()

	app := cli.NewApp()
	app.Version = "0.1.0"
	app.Name = "recoveryd"
	app.Usage = "search for Bitcoin wallets from partially known recovery phrases"
	app.Commands = append(
		app.Commands,
		&search,
		&validateword,
		&wordlist,
	)

	if err := app.Run(os.Args); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[recoveryd] %v\n", err)
	os.Exit(1)
}
