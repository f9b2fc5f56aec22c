package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) newCheckMailCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-mail",
		Short: "Verify the confirmation email configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sender, err := newSender(a.cfg.Mail)
			if err != nil {
				return err
			}
			if err := verifyMail(cmd.Context(), sender); err != nil {
				return fmt.Errorf("mail provider %s: %w", a.cfg.Mail.Provider, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "mail provider %s ready\n", a.cfg.Mail.Provider)
			return nil
		},
	}
}
