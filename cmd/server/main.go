package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/wolfeidau/tasktracker/cmd/server/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Debug   bool `help:"Enable debug mode." env:"TASKTRACKER_DEBUG"`
		Version kong.VersionFlag
		Serve   commands.ServeCmd   `cmd:"" default:"withargs" help:"Start the API server"`
		Migrate commands.MigrateCmd `cmd:"" help:"Apply PostgreSQL schema migrations"`
		Seed    commands.SeedCmd    `cmd:"" help:"Clear the stores and load seed data"`
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("tasktracker-server"),
		kong.Description("Multi-user project and task tracker API."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}
