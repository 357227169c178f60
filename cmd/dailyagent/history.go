package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/smallnest/dailyagent/config"
	"github.com/spf13/cobra"
)

func historyCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history <run-id>",
		Short: "List the stored steps of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			if cfg.Store.Driver == config.DriverMemory {
				return fmt.Errorf("history needs a persistent store; set store.driver")
			}

			a := &app{cfg: cfg}
			st, err := openStore(cmd.Context(), cfg.Store, a)
			if err != nil {
				return err
			}
			defer a.Close()

			checkpoints, err := st.List(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(checkpoints) == 0 {
				return fmt.Errorf("run %s not found", args[0])
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "STEP\tNODE\tTOPIC\tSECTIONS\tTIME")
			for _, cp := range checkpoints {
				fmt.Fprintf(w, "%d\t%s\t%v\t%v\t%s\n",
					cp.Version, cp.NodeName, cp.Metadata["current_topic"], cp.Metadata["sections"],
					cp.Timestamp.Format("15:04:05"))
			}
			return w.Flush()
		},
	}
}
