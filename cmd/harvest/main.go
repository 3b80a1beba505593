package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mitchellh/go-homedir"

	"media-harvest/internal/config"
	"media-harvest/internal/database"
	"media-harvest/internal/downloader"
	"media-harvest/internal/extract"
	"media-harvest/internal/harvest"
	"media-harvest/internal/logger"
	"media-harvest/internal/task"
)

var log = logger.Get("Main")

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout))
}

type cliArgs struct {
	configPath string
	imageBase  string
	videoBase  string
	outDir     string
	parallel   int
	dir        string

	// set holds the names of the flags given on the command line.
	set map[string]bool
}

func parseArgs(args []string, output io.Writer) (cliArgs, error) {
	a := cliArgs{set: map[string]bool{}}

	fs := flag.NewFlagSet("harvest", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintln(output, "Usage: harvest [flags] [dir]")
		fs.PrintDefaults()
	}
	fs.StringVar(&a.configPath, "config", "config.json", "Path to the JSON configuration file")
	fs.StringVar(&a.imageBase, "image-base", "", "Base URL for images")
	fs.StringVar(&a.videoBase, "video-base", "", "Base URL for videos")
	fs.StringVar(&a.outDir, "out", "", "Directory downloads are written to")
	fs.IntVar(&a.parallel, "parallel", 0, "Maximum number of concurrent downloads")

	if err := fs.Parse(args); err != nil {
		return a, err
	}
	fs.Visit(func(f *flag.Flag) { a.set[f.Name] = true })
	a.dir = fs.Arg(0)

	return a, nil
}

// apply overrides cfg with the flags given on the command line. An empty
// flag value still overrides.
func (a cliArgs) apply(cfg *config.Config) error {
	if a.set["image-base"] {
		cfg.ImageBaseURL = a.imageBase
	}
	if a.set["video-base"] {
		cfg.VideoBaseURL = a.videoBase
	}
	if a.set["out"] {
		cfg.OutputDir = a.outDir
	}
	if a.set["parallel"] {
		cfg.Parallelism = a.parallel
	}

	return cfg.Validate()
}

func run(args []string, stdin io.Reader, stdout io.Writer) int {
	a, err := parseArgs(args, stdout)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		return 1
	}

	configPath, err := homedir.Expand(a.configPath)
	if err != nil {
		log.Emit(logger.FATAL, "Invalid config path %s: %v\n", a.configPath, err)
		return 1
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Emit(logger.FATAL, "%v\n", err)
		return 1
	}
	if err := a.apply(&cfg); err != nil {
		log.Emit(logger.FATAL, "%v\n", err)
		return 1
	}
	logger.SetMinLoggingLevel(logger.ParseLevel(cfg.LogLevel))

	p := newPrompter(stdin, stdout)
	dir := a.dir
	if dir == "" {
		if dir, err = p.ask("Enter the directory path containing JSON files: "); err != nil || dir == "" {
			log.Emit(logger.FATAL, "No input directory given\n")
			return 1
		}
	}
	if p.interactive {
		if cfg.ImageBaseURL == "" && !a.set["image-base"] {
			cfg.ImageBaseURL, _ = p.ask("Enter the base URL for images: ")
		}
		if cfg.VideoBaseURL == "" && !a.set["video-base"] {
			cfg.VideoBaseURL, _ = p.ask("Enter the base URL for videos: ")
		}
	}

	if err := expandPaths(&dir, &cfg.OutputDir, &cfg.LedgerFile, &cfg.PlaylistFile); err != nil {
		log.Emit(logger.FATAL, "%v\n", err)
		return 1
	}

	var recorder harvest.Recorder
	var ledger *task.Ledger
	if cfg.LedgerFile != "" {
		ledger, err = openLedger(cfg.LedgerFile)
		if err != nil {
			log.Emit(logger.FATAL, "Failed to open ledger %s: %v\n", cfg.LedgerFile, err)
			return 1
		}
		defer ledger.Close()
		recorder = ledger
	}

	h := harvest.New(harvest.Options{
		Bases:        extract.BaseURLs{Image: cfg.ImageBaseURL, Video: cfg.VideoBaseURL},
		OutputDir:    cfg.OutputDir,
		Parallelism:  cfg.Parallelism,
		SkipExisting: cfg.SkipExisting,
		PlaylistFile: cfg.PlaylistFile,
	}, newFetcher(cfg), recorder)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := h.Run(ctx, dir)
	if err != nil {
		log.Emit(logger.FATAL, "%v\n", err)
		return 1
	}

	log.Emit(logger.INFO, "Run %s finished: %d downloaded, %d skipped, %d failed, %d of %d files unreadable\n",
		report.Run.ID,
		report.CountDownloads(task.Downloaded),
		report.CountDownloads(task.DownloadSkipped),
		report.CountDownloads(task.DownloadFailed),
		report.FailedScans(), len(report.Scans))

	if ledger != nil {
		summary, err := ledger.Summary(report.Run.ID)
		if err != nil {
			log.Emit(logger.WARNING, "Failed to read ledger summary: %v\n", err)
		} else {
			log.Emit(logger.DEBUG, "Ledger %s: %d downloaded, %d skipped, %d failed\n",
				cfg.LedgerFile, summary[task.Downloaded], summary[task.DownloadSkipped], summary[task.DownloadFailed])
		}
	}

	return 0
}

func newFetcher(cfg config.Config) downloader.Fetcher {
	if cfg.Downloader == config.DownloaderAria2 {
		return downloader.NewAria2Client(cfg.Aria2RPCUrl, cfg.Aria2Secret, cfg.Headers)
	}
	return downloader.NewHTTPFetcher(cfg.Timeout(), cfg.Headers)
}

func openLedger(path string) (*task.Ledger, error) {
	db, err := database.Init(path)
	if err != nil {
		return nil, err
	}

	ledger, err := task.NewLedger(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return ledger, nil
}

func expandPaths(paths ...*string) error {
	for _, p := range paths {
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("invalid path %s: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}
