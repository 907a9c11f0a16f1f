package main

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"panel-brief/pkg/db"
	"panel-brief/pkg/domain"
	"panel-brief/pkg/download"
	"panel-brief/pkg/httpclient"
	"panel-brief/pkg/transcribe"
)

// audioTimeout bounds one audio download, body included.
const audioTimeout = 10 * time.Minute

func newLocateCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "locate <show id or name>",
		Short: "List the most recent episodes of a show",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			showID := args[0]
			if show, ok := ctx.config.Show(args[0]); ok {
				showID = show.ID
			}

			res := ctx.newLocator().LocateDetailed(cmd.Context(), showID, limit)
			if len(res.Episodes) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No episodes found for %s right now\n", showID)
				return nil
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Found %d episodes via %s strategy:\n\n", len(res.Episodes), res.Strategy)
			for i, ep := range res.Episodes {
				fmt.Fprintf(out, "%2d. %s  %s\n", i+1, ep.ID, ep.Title)
				if ep.HasAudio() {
					fmt.Fprintf(out, "    %s\n", ep.AudioURL)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum episodes to list")
	return cmd
}

func newDownloadCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var only string

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download new episode audio for every configured show",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.config
			if !cmd.Flags().Changed("limit") {
				limit = cfg.Download.EpisodesPerShow
			}

			shows := cfg.Shows
			if only != "" {
				show, ok := cfg.Show(only)
				if !ok {
					return fmt.Errorf("show %q is not configured", only)
				}
				shows = []domain.Show{show}
			}

			loc := ctx.newLocator()
			fetcher := httpclient.NewClient(httpclient.BrowserClient, httpclient.Config{
				Timeout:    audioTimeout,
				MaxRetries: cfg.Site.MaxRetries,
				UserAgent:  cfg.Site.UserAgent,
			})

			return ctx.withStore(cmd.Context(), func(store db.Store) error {
				d := download.New(loc, fetcher, store, download.Config{
					Dir:        ctx.dir(cfg.Dirs.Podcasts),
					Referer:    loc.Site().BaseURL + "/",
					EpisodeGap: cfg.Pacing.Page(),
					ShowGap:    cfg.Pacing.Show(),
				})

				start := time.Now()
				log.Printf("Download: %d shows, up to %d new episodes each", len(shows), limit)
				if _, err := d.DownloadAll(cmd.Context(), shows, limit); err != nil {
					return err
				}
				log.Printf("Download: done in %s", time.Since(start).Round(time.Second))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "New episodes per show (default from config)")
	cmd.Flags().StringVar(&only, "show", "", "Only download this show (id or name)")
	return cmd
}

func newPruneCommand(ctx *commandContext) *cobra.Command {
	var keep int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the newest audio files of each show",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("keep") {
				keep = ctx.config.Download.Keep
			}
			removed, err := download.Prune(ctx.dir(ctx.config.Dirs.Podcasts), keep)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d audio files, kept up to %d per show\n", len(removed), keep)
			return nil
		},
	}
	cmd.Flags().IntVar(&keep, "keep", 0, "Audio files to keep per show (default from config)")
	return cmd
}

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "transcribe",
		Short: "Transcribe downloaded audio with speaker tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.newGemini(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()

			batch := transcribe.NewBatch(client, ctx.config.Pacing.Model())
			records, err := batch.Run(cmd.Context(), ctx.dir(ctx.config.Dirs.Podcasts), ctx.dir(ctx.config.Dirs.Transcriptions))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d transcripts ready\n", len(records))
			return nil
		},
	}
}
