package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/speakerhub/pkg/apiclient"
	"github.com/dmitrymomot/speakerhub/pkg/console"
	"github.com/dmitrymomot/speakerhub/pkg/logger"
	"github.com/dmitrymomot/speakerhub/pkg/session"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const (
	envServer     = "SPEAKERHUB_URL"
	defaultServer = "http://localhost:8000"
)

// cli holds the global flags and the console built from them.
type cli struct {
	con       *console.Console
	log       *slog.Logger
	server    string
	statePath string
	output    string
	device    string
	timeout   time.Duration
	verbose   bool
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	cmd := &cobra.Command{
		Use:   "speakerctl",
		Short: "Control smart speakers through a speakerhub gateway",
		Long: `speakerctl talks to a speakerhub gateway.

Log in to the gateway first, then connect the vendor account:

  speakerctl login -u admin
  speakerctl vendor login
  speakerctl devices
  speakerctl say "dinner is ready" --device Kitchen

Session tokens and the selected device are kept in a state file between runs.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.open(cmd)
		},
	}
	cmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	server := os.Getenv(envServer)
	if server == "" {
		server = defaultServer
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&c.server, "server", server, "gateway base URL (env "+envServer+")")
	flags.StringVar(&c.statePath, "state", "", "state file (default: <user config dir>/speakerctl/state.json)")
	flags.StringVarP(&c.output, "output", "o", formatTable, "output format: table, json or yaml")
	flags.StringVarP(&c.device, "device", "d", "", "target device id, alias, name or numeric did")
	flags.DurationVar(&c.timeout, "timeout", 15*time.Second, "request timeout")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		loginCmd(c),
		logoutCmd(c),
		statusCmd(c),
		vendorCmd(c),
		devicesCmd(c),
		selectCmd(c),
		playURLCmd(c),
		playbackCmd(c, "play", "Resume playback"),
		playbackCmd(c, "pause", "Pause playback"),
		playbackCmd(c, "stop", "Stop playback"),
		playbackStatusCmd(c),
		volumeCmd(c),
		sayCmd(c),
	)
	return cmd
}

// open builds the console for the invoked command.
func (c *cli) open(cmd *cobra.Command) error {
	if err := checkFormat(c.output); err != nil {
		return err
	}

	level := "warn"
	if c.verbose {
		level = "debug"
	}
	log := logger.New(logger.Config{Level: level, Output: cmd.ErrOrStderr()})

	path := c.statePath
	if path == "" {
		var err error
		if path, err = defaultStatePath(); err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	store := session.NewFileStore(path)
	sess, err := session.Open(ctx, store, session.WithLogger(log))
	if errors.Is(err, session.ErrCorrupted) {
		log.WarnContext(ctx, "discarding unreadable state file", slog.String("path", path), slog.Any("error", err))
		if err := store.Delete(ctx); err != nil {
			return fmt.Errorf("reset state: %w", err)
		}
		sess, err = session.Open(ctx, store, session.WithLogger(log))
	}
	if err != nil {
		return fmt.Errorf("open state: %w", err)
	}

	api := apiclient.New(c.server, sess,
		apiclient.WithLogger(log),
		apiclient.WithTimeout(c.timeout),
		apiclient.WithUserAgent("speakerctl/"+version),
	)
	c.log = log
	c.con = console.New(sess, api, console.WithLogger(log))
	return nil
}

func defaultStatePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "speakerctl", "state.json"), nil
}
