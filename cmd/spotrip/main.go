package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var version = "dev"

type options struct {
	username    string
	password    string
	collections bool
	updateTags  bool
	hook        string
	output      string
	configPath  string
	gateway     string
	ffmpeg      string
	verbose     bool
	logFormat   string
	noLedger    bool
}

func newRootCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "spotrip [flags] < links.txt",
		Version: version,
		Short:   "Download Spotify tracks and playlists as tagged MP3 files.",
		Long: `spotrip reads Spotify track links (or playlist links with --collections)
from stdin, one per line, and saves each track as a tagged MP3.

Lines starting with # are ignored. Tracks that already exist are skipped
unless --update-tags is given, in which case only their tags are rewritten.`,
		Example: `  spotrip -u alice < tracks.txt
  spotrip --collections -o ~/Music/playlists < playlists.txt
  echo spotify:track:4uLU6hMCjMI75M1A2tKUQC | spotrip --hook ./play.sh`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.username, "username", "u", "", "account username (env SPOTRIP_USERNAME)")
	f.StringVarP(&opts.password, "password", "p", "", "account password (env SPOTRIP_PASSWORD)")
	f.BoolVar(&opts.collections, "collections", false, "read playlist links instead of track links")
	f.BoolVar(&opts.updateTags, "update-tags", false, "rewrite tags of files that already exist")
	f.StringVar(&opts.hook, "hook", "", "pipe decoded audio to this program instead of writing files")
	f.StringVarP(&opts.output, "output", "o", "", "output directory")
	f.StringVarP(&opts.configPath, "config", "c", "", "config file (default "+defaultConfigHint()+")")
	f.StringVar(&opts.gateway, "gateway", "", "session gateway URL")
	f.StringVar(&opts.ffmpeg, "ffmpeg", "", "ffmpeg binary")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "show debug output")
	f.StringVar(&opts.logFormat, "log-format", "", "log format: console or json")
	f.BoolVar(&opts.noLedger, "no-ledger", false, "do not record claims and outcomes in the output directory")

	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCommand(&options{}).ExecuteContext(ctx)
	if err == nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "\nInterrupted.")
		stop()
		os.Exit(130)
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	stop()
	os.Exit(1)
}
