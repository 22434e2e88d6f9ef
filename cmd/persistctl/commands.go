package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-persist/pkg/storage"
)

var errNotFound = errors.New("no record stored")

func (c *cli) getCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get [slice]",
		Short: "Print the record stored for a slice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slice := args[0]
			raw, ok, err := c.gateway.Get(cmd.Context(), slice)
			if err != nil {
				return err
			}
			if !ok {
				c.logger.Warn().Str("slice", slice).Str("key", storage.Key(slice)).Msg("record not found")
				return fmt.Errorf("%s: %w", slice, errNotFound)
			}
			if pretty, _ := cmd.Flags().GetBool("pretty"); pretty {
				var buf bytes.Buffer
				if err := json.Indent(&buf, []byte(raw), "", "  "); err == nil {
					raw = buf.String()
				}
			}
			fmt.Fprintln(c.out, raw)
			return nil
		},
	}
	cmd.Flags().Bool("pretty", false, "indent the JSON record")
	return cmd
}

func (c *cli) setCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set [slice] [json]",
		Short: "Overwrite the record stored for a slice",
		Long:  "Overwrite the record stored for a slice. Running stores pick the new\nrecord up the next time they are constructed.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			slice, value := args[0], strings.TrimSpace(args[1])
			if !json.Valid([]byte(value)) {
				return fmt.Errorf("%s: value is not valid JSON", slice)
			}
			if err := c.gateway.Set(cmd.Context(), slice, value); err != nil {
				return err
			}
			c.logger.Info().Str("slice", slice).Int("bytes", len(value)).Msg("record written")
			return nil
		},
	}
}

func (c *cli) clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "clear [slice...]",
		Aliases: []string{"rm"},
		Short:   "Remove the records stored for slices",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, slice := range args {
				if err := c.gateway.Remove(cmd.Context(), slice); err != nil {
					return err
				}
				c.logger.Info().Str("slice", slice).Msg("record cleared")
			}
			return nil
		},
	}
}

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List slices with a stored record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lister, ok := c.backend.(storage.Lister)
			if !ok {
				return fmt.Errorf("driver %q cannot list keys", c.v.GetString("driver"))
			}
			keys, err := lister.Keys(cmd.Context())
			if err != nil {
				return err
			}
			for _, key := range keys {
				if slice, found := strings.CutPrefix(key, storage.KeyPrefix); found {
					fmt.Fprintln(c.out, slice)
				}
			}
			return nil
		},
	}
}
