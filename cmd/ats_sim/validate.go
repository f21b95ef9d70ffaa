package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/ats-simulator/internal/schemas"
)

func newValidateCmd() *cobra.Command {
	var schemaName string
	cmd := &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a request or result JSON file against its schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			if err := schemas.ValidateBytes(schemaName, data); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: valid %s\n", args[0], schemaName)
			return nil
		},
	}
	cmd.Flags().StringVar(&schemaName, "schema", schemas.SimulationResult,
		"Schema name: "+strings.Join(schemas.Names(), ", "))
	return cmd
}
