package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"p7mx/internal/config"
	"p7mx/internal/diag"
	"p7mx/internal/openssl"
	"p7mx/internal/pipeline"
	"p7mx/internal/queue"
	"p7mx/internal/report"
	"p7mx/internal/scan"
	"p7mx/internal/security"
)

const maxFailureLines = 10

func newExtractCommand(app *appContext) *cobra.Command {
	var (
		destDir     string
		workers     int
		recursive   bool
		verifyChain bool
		scanInputs  bool
		clamdAddr   string
		reportPath  string
		diagnose    bool
	)

	cmd := &cobra.Command{
		Use:   "extract [file|directory...]",
		Short: "Extract payloads from signed container files",
		Long: "extract queues every matching file from the given files and\n" +
			"directories, then unwraps each one through the external tool.\n" +
			"A single failing file never stops the rest of the batch.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.cfg
			if cmd.Flags().Changed("dest") {
				cfg.DestinationDir = destDir
			}
			if cmd.Flags().Changed("workers") {
				cfg.Workers = workers
			}
			if cmd.Flags().Changed("recursive") {
				cfg.Recursive = recursive
			}
			if cmd.Flags().Changed("verify-chain") {
				cfg.VerifyChain = verifyChain
			}
			if cmd.Flags().Changed("scan") {
				cfg.Scan.Enabled = scanInputs
			}
			if cmd.Flags().Changed("clamd") {
				cfg.Scan.ClamdAddress = clamdAddr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runExtract(cmd.Context(), cfg, args, reportPath, diagnose)
		},
	}

	cmd.Flags().StringVarP(&destDir, "dest", "d", "", "Write every output to this directory instead of next to its source")
	cmd.Flags().IntVarP(&workers, "workers", "w", 1, "Concurrent extractions")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", true, "Recursively scan directory arguments")
	cmd.Flags().BoolVar(&verifyChain, "verify-chain", false, "Validate the signer certificate chain instead of extracting only")
	cmd.Flags().BoolVar(&scanInputs, "scan", false, "Scan inputs with ClamAV before extraction")
	cmd.Flags().StringVar(&clamdAddr, "clamd", security.DefaultClamdAddress, "ClamAV daemon address")
	cmd.Flags().StringVar(&reportPath, "report", "", "Write a PDF summary of the run to this path")
	cmd.Flags().BoolVar(&diagnose, "diagnose", false, "Periodically log runtime diagnostics")

	return cmd
}

func runExtract(ctx context.Context, cfg config.Config, args []string, reportPath string, diagnose bool) error {
	start := time.Now()
	log := slog.Default()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if diagnose {
		diag.Monitor(ctx, log, start, 30*time.Second)
	}

	scanner := security.Disabled()
	if cfg.Scan.Enabled {
		s, err := security.NewScanner(cfg.Scan.ClamdAddress)
		if err != nil {
			log.Warn("continuing without virus scanning", "error", err)
		} else {
			scanner = s
		}
	}

	store := queue.NewStore()
	pipe := pipeline.New(store, openssl.NewClient(cfg.OpenSSLBinary, cfg.VerifyChain), pipeline.Options{
		DestinationDir: cfg.DestinationDir,
		OutputExt:      cfg.OutputExt,
		Workers:        cfg.Workers,
		Scanner:        scanner,
		Logger:         log,
	})

	interactive := isatty.IsTerminal(os.Stdout.Fd())
	consumerDone := make(chan struct{})
	go consumeEvents(pipe, interactive, consumerDone)

	res := scan.Discover(args, scan.Options{Extension: cfg.InputExt, Recursive: cfg.Recursive})
	if res.Skipped > 0 {
		log.Warn("some paths could not be read", "skipped", res.Skipped)
	}
	added, err := pipe.AddPaths(res.Candidates)
	if err != nil {
		return err
	}
	if added == 0 {
		return fmt.Errorf("no %s files found", cfg.InputExt)
	}
	if dups := len(res.Candidates) - added; dups > 0 {
		log.Info("skipped duplicate paths", "duplicates", dups)
	}
	fmt.Printf("Queued %d %s files\n", added, cfg.InputExt)

	sum, runErr := pipe.Run(ctx)
	<-consumerDone
	if runErr != nil {
		return runErr
	}

	printSummary(os.Stdout, sum, store.Items(), interactive)

	if reportPath != "" {
		if err := report.Write(reportPath, sum, store.Items()); err != nil {
			log.Warn("could not write report", "error", err)
		} else {
			fmt.Printf("Report written to %s\n", reportPath)
		}
	}

	if sum.Failed > 0 {
		return fmt.Errorf("%d of %d files failed", sum.Failed, sum.Total)
	}
	return nil
}

// consumeEvents drains the pipeline event stream, driving the progress bar
// on interactive terminals, until the run reaches a terminal event.
func consumeEvents(pipe *pipeline.Pipeline, interactive bool, done chan<- struct{}) {
	defer close(done)

	var bar *progressbar.ProgressBar
	for evt := range pipe.Events() {
		switch evt.Kind {
		case pipeline.EventProgress:
			if !interactive {
				continue
			}
			if bar == nil {
				bar = progressbar.NewOptions(pipe.Store().Len(),
					progressbar.OptionSetDescription("Extracting"),
					progressbar.OptionShowCount(),
					progressbar.OptionShowElapsedTimeOnFinish(),
					progressbar.OptionSetTheme(progressbar.Theme{
						Saucer:        "=",
						SaucerHead:    ">",
						SaucerPadding: " ",
						BarStart:      "[",
						BarEnd:        "]",
					}),
				)
			}
			_ = bar.Add(1)
		case pipeline.EventCompleted, pipeline.EventFailedToStart:
			if bar != nil {
				_ = bar.Finish()
				fmt.Println()
			}
			return
		}
	}
}
