package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/backmassage/syncmux/internal/check"
	"github.com/backmassage/syncmux/internal/config"
	"github.com/backmassage/syncmux/internal/correct"
	"github.com/backmassage/syncmux/internal/decode"
	"github.com/backmassage/syncmux/internal/display"
	"github.com/backmassage/syncmux/internal/jobspec"
	"github.com/backmassage/syncmux/internal/logging"
	"github.com/backmassage/syncmux/internal/metrics"
	"github.com/backmassage/syncmux/internal/pipeline"
	"github.com/backmassage/syncmux/internal/runner"
)

func newRunCmd() *cobra.Command {
	cli := rootFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one or more JobSpecs through the sync/mux pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			cli.LogFile = rootFlags.LogFile
			cli.Verbose = rootFlags.Verbose
			cli.ColorMode = rootFlags.ColorMode
			cli.MetricsAddr = rootFlags.MetricsAddr
			return runBatch(&cli)
		},
	}

	cmd.Flags().StringVar(&cli.JobsDir, "jobs-dir", "", "directory of *.yaml JobSpec files (batch mode)")
	cmd.Flags().StringVar(&cli.JobFile, "job-file", "", "single JobSpec file (single-job mode)")
	cmd.Flags().StringVar(&cli.WorkDir, "work-dir", cli.WorkDir, "per-job working directories are created under here")
	return cmd
}

func runBatch(cli *config.CLI) error {
	if err := cli.Validate(); err != nil {
		return err
	}

	log, err := logging.New(cli)
	if err != nil {
		return err
	}
	defer log.Close()

	display.PrintBanner()

	if err := check.Deps(); err != nil {
		log.Error("%v", err)
		return err
	}

	specs, err := loadSpecs(cli)
	if err != nil {
		log.Error("%v", err)
		return err
	}

	resolver := pipeline.NewOutputCollisionResolver()
	for i := range specs {
		resolved := resolver.Resolve(specs[i].Name, specs[i].OutputPath)
		if resolved != specs[i].OutputPath {
			log.Warn("output path collision for job %q, writing to %s instead", specs[i].Name, resolved)
			specs[i].OutputPath = resolved
		}
	}

	for _, s := range specs {
		if s.Config.CorrectionEnabled {
			if err := check.RequireCorrectionEngine(string(s.Config.CorrectionEngine)); err != nil {
				log.Error("%v", err)
				return err
			}
		}
	}

	mcol := metrics.New()
	msrv, err := mcol.Serve(cli.MetricsAddr)
	if err != nil {
		log.Error("cannot start metrics server: %v", err)
		return err
	}
	if msrv != nil {
		defer msrv.Shutdown(context.Background())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	run := runner.New(log)
	dec := decode.New(log, decode.EngineDefault)
	corrector := correct.New(run)
	orch := pipeline.New()

	results := make([]pipeline.Result, 0, len(specs))
	for _, job := range specs {
		jobID := uuid.New().String()
		workDir := filepath.Join(cli.WorkDir, fmt.Sprintf("%s-%s", sanitizeName(job.Name), jobID[:8]))
		if err := os.MkdirAll(workDir, 0o755); err != nil {
			log.Error("cannot create work dir %s: %v", workDir, err)
			results = append(results, pipeline.Result{JobName: job.Name, Status: pipeline.StatusFailed, Err: err})
			continue
		}

		pc := &pipeline.Context{
			Job:            job,
			WorkDir:        workDir,
			Log:            log,
			Run:            run,
			Decoder:        dec,
			Corrector:      corrector,
			Metrics:        mcol,
			ToolTimeoutS:   job.Config.ToolTimeoutS,
			ErrorTailLines: job.Config.ErrorTailLines,
		}

		log.Info("=== Job: %s (%s) ===", job.Name, jobID)
		results = append(results, orch.Run(ctx, pc))
	}

	summarize(log, results)
	os.Exit(pipeline.ExitCode(results))
	return nil
}

func loadSpecs(cli *config.CLI) ([]jobspec.JobSpec, error) {
	if cli.JobFile != "" {
		spec, err := jobspec.Load(cli.JobFile)
		if err != nil {
			return nil, err
		}
		return []jobspec.JobSpec{spec}, nil
	}
	return jobspec.LoadDir(cli.JobsDir)
}

func summarize(log *logging.Logger, results []pipeline.Result) {
	log.Section("Summary")
	for _, r := range results {
		switch r.Status {
		case pipeline.StatusSucceeded:
			log.Success("%s: succeeded", r.JobName)
		case pipeline.StatusCancelled:
			log.Warn("%s: cancelled", r.JobName)
		default:
			log.Error("%s: failed (%v)", r.JobName, r.Err)
		}
	}
}

// sanitizeName keeps job working-directory names filesystem-safe without
// requiring job authors to pick a separate slug; spaces and path separators
// are the only characters JobSpec names realistically carry.
func sanitizeName(name string) string {
	r := make([]rune, 0, len(name))
	for _, c := range name {
		switch c {
		case '/', '\\', ' ':
			r = append(r, '_')
		default:
			r = append(r, c)
		}
	}
	if len(r) == 0 {
		return "job"
	}
	return string(r)
}
