package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"replyai/internal/conversation"
)

func (a *app) threadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "thread",
		Aliases: []string{"threads"},
		Short:   "List or show stored conversations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List conversation names with their message counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			st, err := a.openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			threads := st.LoadThreads(cmd.Context())
			for _, name := range threads.Names() {
				fmt.Fprintf(a.stdout, "%s\t%d\n", name, len(threads[name].Messages))
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show NAME",
		Short: "Print one conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			st, err := a.openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			m := conversation.NewManager(st, conversation.NewTerminalView(a.stdout), a.logger)
			m.Render(cmd.Context(), args[0])
			return nil
		},
	})

	return cmd
}
