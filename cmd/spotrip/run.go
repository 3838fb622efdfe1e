package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/handiism/spotrip/internal/audio"
	"github.com/handiism/spotrip/internal/config"
	"github.com/handiism/spotrip/internal/download"
	"github.com/handiism/spotrip/internal/http"
	ioutils "github.com/handiism/spotrip/internal/io"
	"github.com/handiism/spotrip/internal/ledger"
	"github.com/handiism/spotrip/internal/logging"
	"github.com/handiism/spotrip/internal/report"
	"github.com/handiism/spotrip/internal/spotify"
	"github.com/handiism/spotrip/internal/spotify/gateway"
	"github.com/handiism/spotrip/internal/spotify/webapi"
	"github.com/handiism/spotrip/internal/transfer"
)

// lockFileName guards an output directory against concurrent runs.
const lockFileName = ".spotrip.lock"

func defaultConfigHint() string {
	return config.DefaultPath()
}

func run(cmd *cobra.Command, opts *options) error {
	ctx := cmd.Context()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not load .env: %v\n", err)
	}

	settings, err := loadSettings(cmd, opts)
	if err != nil {
		return err
	}

	runLog, err := logging.Configure(logging.Options{
		Format:  settings.LogFormat,
		Level:   settings.LogLevel,
		Verbose: opts.verbose,
		Output:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	runID, _ := runLog.Data[logging.FieldRun].(string)

	reporter, err := report.New(settings.SentryDSN, version)
	if err != nil {
		return fmt.Errorf("error reporting: %w", err)
	}
	defer reporter.Flush(2 * time.Second)

	hookMode := settings.HookPath != ""
	var store *ledger.Ledger
	if !hookMode {
		unlock, err := lockOutput(settings.OutputPath)
		if err != nil {
			return err
		}
		defer unlock()

		if err := audio.CheckFFmpeg(settings.FFmpegPath); err != nil {
			runLog.WithError(err).Warnf("%s not found, transcoding will fail", settings.FFmpegPath)
		}

		if settings.UseLedger {
			store, err = ledger.Open(filepath.Join(settings.OutputPath, ledger.FileName))
			if err != nil {
				return err
			}
			defer store.Close()
		}
	}

	dialer := gateway.NewDialer(gateway.Config{
		BaseURL:   settings.GatewayURL,
		Timeout:   settings.RequestTimeoutDuration(),
		RateLimit: settings.RateLimit(),
		Burst:     settings.RateBurst,
		UserAgent: settings.UserAgent,
	})
	session, err := dialer.Dial(ctx, spotify.Credentials{Username: settings.Username, Password: settings.Password})
	if err != nil {
		return fmt.Errorf("login to %s: %w", settings.GatewayURL, err)
	}
	runLog.WithField("user", settings.Username).Info("Logged in")

	var decoder transfer.Decoder = transfer.Passthrough{}
	if !settings.GatewayDecodes {
		decoder = &transfer.CommandDecoder{Path: settings.DecoderCommand, Args: settings.DecoderArgs}
	}
	fetcher := transfer.NewFetcher(session, decoder, transfer.Options{
		AllowKeyless:   settings.AllowKeylessDecode,
		Progress:       logging.IsTerminal(os.Stderr) && settings.LogFormat != "json",
		ProgressWriter: os.Stderr,
	})

	managerOpts := []download.Option{
		download.WithLedger(store),
		download.WithReporter(reporter),
		download.WithHTTPClient(http.NewClient(
			http.WithTimeout(settings.RequestTimeoutDuration()),
			http.WithUserAgent(settings.UserAgent),
		)),
	}
	if opts.collections && settings.UseWebAPI() {
		src, err := webapi.New(ctx, settings.WebAPIClientID, settings.WebAPIClientSecret)
		if err != nil {
			return fmt.Errorf("web api: %w", err)
		}
		managerOpts = append(managerOpts, download.WithCollectionSource(src))
		runLog.Debug("Resolving collections through the Web API")
	}

	playlistFormat, err := audio.ParsePlaylistFormat(settings.PlaylistFormat)
	if err != nil {
		return err
	}

	// Outcome lines share stdout with the hook's output otherwise.
	out := cmd.OutOrStdout()
	if hookMode {
		out = cmd.ErrOrStderr()
	}
	printer := newPrinter(out)

	manager := download.NewManager(session, fetcher, download.Config{
		Paths:            settings.ToPathConfig(),
		Refresh:          settings.UpdateTags,
		HookPath:         settings.HookPath,
		HookOutput:       cmd.OutOrStdout(),
		RunID:            runID,
		SaveArtwork:      settings.SaveCoverArtInTags,
		ArtworkURL:       settings.ArtworkURLTemplate,
		CoverMaxSize:     settings.CoverMaxSize(),
		CreatePlaylist:   settings.CreatePlaylist,
		PlaylistFormat:   playlistFormat,
		M3UExtended:      settings.M3UExtended,
		FFmpegPath:       settings.FFmpegPath,
		TranscodeTimeout: settings.TranscodeTimeoutDuration(),
	}, printer.result, managerOpts...)

	printer.banner(settings, opts.collections)
	ids := spotify.NewExtractor(opts.collections).Extract(cmd.InOrStdin())
	results, runErr := manager.Run(ctx, ids)
	printer.summary(results)

	return runErr
}

// loadSettings layers defaults, the config file, the environment and flags.
func loadSettings(cmd *cobra.Command, opts *options) (*config.Settings, error) {
	path := opts.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	settings, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	settings.ApplyEnv(os.Getenv)

	flags := cmd.Flags()
	if flags.Changed("username") {
		settings.Username = opts.username
	}
	if flags.Changed("password") {
		settings.Password = opts.password
	}
	if flags.Changed("output") {
		settings.OutputPath = opts.output
	}
	if flags.Changed("gateway") {
		settings.GatewayURL = opts.gateway
	}
	if flags.Changed("ffmpeg") {
		settings.FFmpegPath = opts.ffmpeg
	}
	if flags.Changed("hook") {
		settings.HookPath = opts.hook
	}
	if flags.Changed("log-format") {
		settings.LogFormat = opts.logFormat
	}
	if opts.updateTags {
		settings.UpdateTags = true
	}
	if opts.noLedger {
		settings.UseLedger = false
	}

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return settings, nil
}

// lockOutput takes an exclusive lock on the output directory and returns
// the function releasing it.
func lockOutput(root string) (func(), error) {
	if err := ioutils.EnsureDir(root); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	lock := flock.New(filepath.Join(root, lockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another spotrip run is writing to %s", root)
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			log.WithError(err).Warn("Failed to release output lock")
		}
	}, nil
}
