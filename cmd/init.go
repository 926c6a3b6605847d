package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/luoqi/gxledger/config"
)

type initCmd struct {
	force bool
}

func (*initCmd) Name() string     { return "init" }
func (*initCmd) Synopsis() string { return "write a default configuration file" }
func (*initCmd) Usage() string {
	return `gxl init [-f]

  Writes a configuration file with the default settings, to be edited by
  hand. Refuses to overwrite an existing file unless -f is given.

`
}

func (p *initCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&p.force, "f", false, "Overwrite an existing configuration file.")
}

func (p *initCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !p.force {
		if _, err := os.Stat(*configFile); err == nil {
			fmt.Fprintf(os.Stderr, "Error: %s already exists, use -f to overwrite.\n", *configFile)
			return subcommands.ExitFailure
		}
	}
	if err := config.Default().SaveToFile(*configFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Wrote %s.\n", *configFile)
	return subcommands.ExitSuccess
}
