package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/spf13/cobra"

	"panel-brief/pkg/db"
	"panel-brief/pkg/monitor"
	"panel-brief/pkg/progress"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show download and transcription progress per show",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := progress.Scan(ctx.dir(ctx.config.Dirs.Podcasts), ctx.dir(ctx.config.Dirs.Transcriptions))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, progress.RenderTable(r))
			if r.Done() {
				fmt.Fprintln(out, "All audio is transcribed")
			}

			return ctx.withStore(cmd.Context(), func(store db.Store) error {
				if store == nil {
					return nil
				}
				return printStored(cmd.Context(), out, ctx, store)
			})
		},
	}
}

func printStored(ctx context.Context, out io.Writer, c *commandContext, store db.Store) error {
	fmt.Fprintf(out, "\nStored download records (%s):\n", c.config.Store.Kind)
	for _, show := range c.config.Shows {
		ids, err := store.EpisodeIDs(ctx, show.Name)
		if err != nil {
			return fmt.Errorf("stored episodes of %s: %w", show.Name, err)
		}
		fmt.Fprintf(out, "  %s: %d\n", show.Name, len(ids))
	}
	return nil
}

func newMonitorCommand(ctx *commandContext) *cobra.Command {
	var interval, maxWait time.Duration
	var skipQuestions bool

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Wait for transcription to finish, then analyse and design questions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := monitor.Config{
				PodcastsDir:    ctx.dir(ctx.config.Dirs.Podcasts),
				TranscriptsDir: ctx.dir(ctx.config.Dirs.Transcriptions),
				LockPath:       ctx.lockPath(),
				Interval:       interval,
				MaxWait:        maxWait,
			}
			log.Printf("Monitor: checking every %s, giving up after %s", interval, maxWait)
			return monitor.Run(cmd.Context(), cfg, func(runCtx context.Context) error {
				if err := ctx.runAnalyze(runCtx); err != nil {
					return err
				}
				if skipQuestions {
					return nil
				}
				return ctx.runQuestions(runCtx)
			})
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", monitor.DefaultInterval, "Time between progress checks")
	cmd.Flags().DurationVar(&maxWait, "max-wait", monitor.DefaultMaxWait, "Run the analysis anyway after this long")
	cmd.Flags().BoolVar(&skipQuestions, "skip-questions", false, "Only analyse, do not design questions")
	return cmd
}
