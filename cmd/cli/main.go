package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/tasktracker/cmd/cli/internal/commands"
	"github.com/wolfeidau/tasktracker/internal/logger"
)

var (
	version = "dev"
	cli     struct {
		Signup  commands.SignupCmd  `cmd:"" help:"Register a new user"`
		Login   commands.LoginCmd   `cmd:"" help:"Log in and save the session"`
		Logout  commands.LogoutCmd  `cmd:"" help:"End the saved session"`
		Whoami  commands.WhoamiCmd  `cmd:"" help:"Show the logged in user"`
		Project commands.ProjectCmd `cmd:"" help:"Manage projects"`
		Task    commands.TaskCmd    `cmd:"" help:"Manage tasks"`

		Server     string `help:"Server URL" default:"http://localhost:8080" env:"TASKTRACKER_SERVER"`
		Transport  string `help:"token transport (header or cookie), defaults to the one saved at login" default:"" env:"TASKTRACKER_TRANSPORT"`
		SessionDir string `help:"directory holding saved sessions" default:"" env:"TASKTRACKER_SESSION_DIR"`
		Debug      bool   `help:"Enable debug mode."`
		Version    kong.VersionFlag
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("tasktracker"),
		kong.Description("Command line client for the task tracker."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))

	log.Logger = logger.Setup(cli.Debug)

	err := cmd.Run(&commands.Globals{
		Debug:      cli.Debug,
		Version:    version,
		Server:     cli.Server,
		Transport:  cli.Transport,
		SessionDir: cli.SessionDir,
	})
	cmd.FatalIfErrorf(err)
}
