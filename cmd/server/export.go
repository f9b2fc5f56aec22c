package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"sportsday/internal/adapters/storage"
	"sportsday/internal/application/projections"
	"sportsday/internal/domain/export"
)

func (a *app) newExportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all registrations as CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, closeStore, err := openStore(cmd.Context(), a.cfg.StoreURI, storage.WithSlowQuery(a.cfg.SlowQuery))
			if err != nil {
				return err
			}
			defer closeStore()

			doc, err := projections.QueryExportRegistrations(cmd.Context(), projections.ExportRegistrationsDeps{Store: store})
			if err != nil {
				return fmt.Errorf("export registrations: %w", err)
			}

			if output == "" {
				if err := doc.Encode(cmd.OutOrStdout()); err != nil {
					return fmt.Errorf("write csv: %w", err)
				}
				return nil
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := writeCSV(f, &doc); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d registrations to %s\n", len(doc.Rows), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

// writeCSV encodes doc into w and closes it. A failed close is reported,
// since buffered data may not have reached the file.
func writeCSV(w io.WriteCloser, doc *export.Document) error {
	if err := doc.Encode(w); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
