package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"panel-brief/pkg/content"
	"panel-brief/pkg/db"
	"panel-brief/pkg/domain"
	"panel-brief/pkg/httpclient"
	"panel-brief/pkg/report"
)

const (
	hostAnalysesFile  = "host_analyses.json"
	hostInsightsFile  = "host_insights.md"
	guestAnalysesFile = "guest_analyses.json"
	guestNotesFile    = "guest_notes.md"
	questionsFile     = "interview_questions.json"
	outlineFile       = "interview_outline.md"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Analyse the transcripts of every show for what its host says",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.runAnalyze(cmd.Context())
		},
	}
}

func (c *commandContext) runAnalyze(ctx context.Context) error {
	client, err := c.newGemini(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	return c.withStore(ctx, func(store db.Store) error {
		a := c.newAnalyzer(client, store)
		log.Printf("Analyze: run %s", a.RunID())

		summaries, err := a.AnalyzeDir(ctx, c.dir(c.config.Dirs.Transcriptions))
		if err != nil {
			return err
		}
		if err := report.WriteJSON(c.outputPath(hostAnalysesFile), summaries); err != nil {
			return err
		}
		if err := report.WriteMarkdown(c.outputPath(hostInsightsFile), report.HostInsights(summaries)); err != nil {
			return err
		}
		log.Printf("Analyze: wrote %d host summaries to %s", len(summaries), c.dir(c.config.Dirs.Outputs))
		return nil
	})
}

func newGuestsCommand(ctx *commandContext) *cobra.Command {
	var brief string

	cmd := &cobra.Command{
		Use:   "guests",
		Short: "Research the guests without a show of their own",
		RunE: func(cmd *cobra.Command, args []string) error {
			briefText, err := readBrief(brief)
			if err != nil {
				return err
			}

			client, err := ctx.newGemini(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()

			cfg := ctx.config
			fetcher := httpclient.NewClient(httpclient.BrowserClient, httpclient.Config{
				Timeout:    cfg.Site.Timeout(),
				MaxRetries: cfg.Site.MaxRetries,
				UserAgent:  cfg.Site.UserAgent,
			})
			collector := content.NewCollector(fetcher, briefText, cfg.Pacing.Page())
			research := func(runCtx context.Context, g domain.Guest) string {
				collected := collector.Collect(runCtx, g)
				if collected != "" {
					path := filepath.Join(ctx.dir(cfg.Dirs.Research), g.Name+".txt")
					if err := report.WriteMarkdown(path, collected); err != nil {
						log.Printf("Guests: failed to save research for %s: %v", g.Name, err)
					}
				}
				return collected
			}

			return ctx.withStore(cmd.Context(), func(store db.Store) error {
				a := ctx.newAnalyzer(client, store)
				analyses, err := a.AnalyzeGuests(cmd.Context(), cfg.Guests, research)
				if err != nil {
					return err
				}

				if err := report.WriteJSON(ctx.outputPath(guestAnalysesFile), analyses); err != nil {
					return err
				}
				summaries := ctx.readSummaries()
				notes := report.GuestNotes(cfg.Guests, summaries, analyses)
				if err := report.WriteMarkdown(ctx.outputPath(guestNotesFile), notes); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Researched %d guests\n", len(analyses))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&brief, "brief", "", "Event brief, PDF or plain text")
	return cmd
}

func newQuestionsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "questions",
		Short: "Design a tailored question per guest plus the topic questions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.runQuestions(cmd.Context())
		},
	}
}

func (c *commandContext) runQuestions(ctx context.Context) error {
	client, err := c.newGemini(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	a := c.newAnalyzer(client, nil)
	set, err := a.DesignQuestions(ctx, c.config.Guests, c.readSummaries(), c.config.Topics)
	if err != nil {
		return err
	}
	if err := report.WriteJSON(c.outputPath(questionsFile), set); err != nil {
		return err
	}
	outline := report.InterviewOutline(c.config.Event, c.config.Guests, set)
	if err := report.WriteMarkdown(c.outputPath(outlineFile), outline); err != nil {
		return err
	}
	log.Printf("Questions: %d guest and %d topic questions", len(set.GuestQuestions), len(set.TopicQuestions))
	return nil
}

func newProfilesCommand(ctx *commandContext) *cobra.Command {
	var lang string

	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Render the guest profile cards",
		RunE: func(cmd *cobra.Command, args []string) error {
			md, err := report.GuestProfiles(ctx.config.Guests, lang)
			if err != nil {
				return err
			}
			path := ctx.outputPath(profilesFile(lang))
			if err := report.WriteMarkdown(path, md); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&lang, "lang", report.Bilingual, "Language: zh, en or bilingual")
	return cmd
}

func profilesFile(lang string) string {
	return "guest_profiles_" + lang + ".md"
}

// readSummaries loads the host summaries written by analyze. A missing
// file means analyze has not run yet.
func (c *commandContext) readSummaries() map[string]domain.HostSummary {
	summaries := map[string]domain.HostSummary{}
	err := report.ReadJSON(c.outputPath(hostAnalysesFile), &summaries)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Printf("Summaries: no host analyses yet, run analyze first for richer questions")
	case err != nil:
		log.Printf("Summaries: ignoring host analyses: %v", err)
		return map[string]domain.HostSummary{}
	}
	return summaries
}

func readBrief(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return content.ExtractTextFromPDFFile(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read brief: %w", err)
	}
	return string(data), nil
}
