package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smallnest/dailyagent/newspaper"
	"github.com/smallnest/dailyagent/render"
	"github.com/spf13/cobra"
)

func generateCmd(root *rootOptions) *cobra.Command {
	var htmlPath string
	var quiet bool

	cmd := &cobra.Command{
		Use:   "generate [request]",
		Short: "Research the requested topics and print the newspaper as Markdown",
		Example: `  dailyagent generate "Generate today's newspaper"
  dailyagent generate "Tell me about Formula 1" --html f1.html`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			request := strings.TrimSpace(strings.Join(args, " "))
			if request == "" {
				request = "Generate today's newspaper"
			}

			cfg, err := root.load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			a, err := newApp(ctx, cfg, prometheus.NewRegistry())
			if err != nil {
				return err
			}
			defer a.Close()

			progress := cmd.ErrOrStderr()
			var final newspaper.State
			for ev := range a.runnable.Stream(ctx, newspaper.NewRequest(request), a.runConfig()) {
				if !ev.Done {
					if !quiet {
						fmt.Fprintln(progress, render.Step(ev.Step, ev.NodeName, newspaper.Describe(ev.NodeName, ev.State)))
					}
					continue
				}
				if ev.Error != nil {
					fmt.Fprintln(progress, render.Failed(ev.Error))
					return ev.Error
				}
				final = ev.State
				if !quiet {
					fmt.Fprintln(progress, render.Done(fmt.Sprintf("run %s finished with %d sections", ev.RunID, len(final.Digests))))
				}
			}
			if err := ctx.Err(); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), final.FinalOutput)

			if htmlPath != "" {
				page := render.Page("The Daily Agent", final.FinalOutput)
				if err := os.WriteFile(htmlPath, []byte(page), 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", htmlPath, err)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&htmlPath, "html", "", "also write the edition as an HTML page to this file")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not print progress")
	return cmd
}
