package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/LerianStudio/lib-offline-license-go/document"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect LICENSE_FILE",
		Short: "Print a license document as JSON without verifying it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := document.LoadFile(fs, args[0])
			if err != nil {
				return err
			}

			b, err := document.ToJSON(l)
			if err != nil {
				return err
			}

			var out bytes.Buffer
			if err := json.Indent(&out, b, "", "  "); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), out.String())

			return nil
		},
	}
}
