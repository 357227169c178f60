package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/smallnest/dailyagent/graph"
	"github.com/smallnest/dailyagent/newspaper"
	"github.com/spf13/cobra"
	"github.com/tmc/langchaingo/llms"
)

func graphCmd(_ *rootOptions) *cobra.Command {
	var ascii, nodes bool

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Print the workflow as a Mermaid diagram",
		RunE: func(cmd *cobra.Command, args []string) error {
			// the layout does not depend on credentials
			g, err := newspaper.NewGraph(newspaper.Options{
				Model:  offlineModel{},
				Search: offlineSearch{},
			})
			if err != nil {
				return err
			}

			if nodes {
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "NODE\tDESCRIPTION")
				for _, n := range g.Nodes() {
					fmt.Fprintf(w, "%s\t%s\n", n.Name, n.Description)
				}
				return w.Flush()
			}

			exporter := graph.NewExporter(g)
			if ascii {
				fmt.Fprint(cmd.OutOrStdout(), exporter.DrawASCII())
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), exporter.DrawMermaid())
			return nil
		},
	}
	cmd.Flags().BoolVar(&ascii, "ascii", false, "print an ASCII tree instead")
	cmd.Flags().BoolVar(&nodes, "nodes", false, "list the nodes and what they do")
	return cmd
}

// offlineModel and offlineSearch stand in for the real clients when only the
// graph layout is needed.
type offlineModel struct{}

var errOffline = errors.New("offline: no model or search backend configured")

func (offlineModel) GenerateContent(context.Context, []llms.MessageContent, ...llms.CallOption) (*llms.ContentResponse, error) {
	return nil, errOffline
}

func (offlineModel) Call(context.Context, string, ...llms.CallOption) (string, error) {
	return "", errOffline
}

type offlineSearch struct{}

func (offlineSearch) Name() string        { return "web_search" }
func (offlineSearch) Description() string { return "unavailable offline" }

func (offlineSearch) Call(context.Context, string) (string, error) {
	return "", errOffline
}
