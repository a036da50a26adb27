package main

import (
	"strings"

	"github.com/spf13/cobra"

	"replyai/internal/conversation"
	"replyai/internal/form"
)

func (a *app) profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "View or save the salesperson profile",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the stored profile as JSON",
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
			return a.printJSON(st.LoadProfile(cmd.Context()))
		},
	})

	var (
		pf        form.ProfileForm
		proofs    []string
		portfolio []string
	)
	set := &cobra.Command{
		Use:   "set",
		Short: "Update profile fields; unset flags keep their stored value",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			st, err := a.openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			ctrl := form.NewController(form.Config{
				Store:   st,
				Manager: conversation.NewManager(st, conversation.NewTerminalView(a.stdout), a.logger),
				Surface: form.NewTerminalSurface(a.stderr, a.stdout),
				Logger:  a.logger,
			})

			current := ctrl.CurrentProfile(ctx)
			flags := cmd.Flags()
			if flags.Changed("name") {
				current.Name = pf.Name
			}
			if flags.Changed("agency") {
				current.Agency = pf.Agency
			}
			if flags.Changed("role") {
				current.Role = pf.Role
			}
			if flags.Changed("signature") {
				current.Signature = pf.Signature
			}
			if flags.Changed("sales-proof") {
				current.SalesProofURLs = strings.Join(proofs, "\n")
			}
			if flags.Changed("portfolio") {
				current.PortfolioURLs = strings.Join(portfolio, "\n")
			}

			_, err = ctrl.SaveProfile(ctx, current)
			return err
		},
	}
	set.Flags().StringVar(&pf.Name, "name", "", "your name")
	set.Flags().StringVar(&pf.Agency, "agency", "", "agency or brand")
	set.Flags().StringVar(&pf.Role, "role", "", "your role")
	set.Flags().StringVar(&pf.Signature, "signature", "", "closing signature")
	set.Flags().StringArrayVar(&proofs, "sales-proof", nil, "default sales proof URL (repeatable; replaces the list)")
	set.Flags().StringArrayVar(&portfolio, "portfolio", nil, "default portfolio URL (repeatable; replaces the list)")
	cmd.AddCommand(set)

	return cmd
}
