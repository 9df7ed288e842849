package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"codeberg.org/mutker/r730fanctl/internal/errors"
	"codeberg.org/mutker/r730fanctl/internal/telemetry"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func newSensorsCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "sensors",
		Short: "Print one sensor reading without touching fan control",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			snapshot, err := a.reader.Read(commandContext(cmd))
			if err != nil {
				return err
			}

			return writeSnapshot(cmd.OutOrStdout(), snapshot, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format (text, json, yaml)")

	return cmd
}

func validateFormat(format string) error {
	switch format {
	case formatText, formatJSON, formatYAML:
		return nil
	default:
		return errors.New().WithMessage(errors.ErrInvalidArgument, fmt.Sprintf("unknown format %q", format))
	}
}

func writeSnapshot(w io.Writer, snapshot *telemetry.Snapshot, format string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snapshot)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(snapshot); err != nil {
			return err
		}
		return enc.Close()
	default:
		_, err := fmt.Fprintln(w, snapshot.String())
		return err
	}
}
