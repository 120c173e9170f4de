/*
 * Copyright 2026 The License Curator Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package license

import (
	"errors"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sw360/license-curator/cmd/licensectl/config"
)

func newListCommand(v *viper.Viper) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List license documents",
		Long: "List license documents. Without --limit the default limit of the " +
			"document store applies.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := config.NewClient(cmd, v)
			if err != nil {
				return err
			}

			docs, err := cli.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			return printLicenses(cmd, v.GetString(config.KeyOutput), docs)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "The maximum number of licenses to list")
	return cmd
}

func newGetCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "get [id]",
		Short: "Show a license document",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("id is required")
			}

			cli, err := config.NewClient(cmd, v)
			if err != nil {
				return err
			}

			doc, err := cli.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return printLicense(cmd, v.GetString(config.KeyOutput), doc)
		},
	}
}

func newCountCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Count license documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := config.NewClient(cmd, v)
			if err != nil {
				return err
			}

			count, err := cli.Count(cmd.Context())
			if err != nil {
				return err
			}

			output := v.GetString(config.KeyOutput)
			if output == "" || output == "table" {
				cmd.Println(count)
				return nil
			}
			return printStructured(cmd, output, map[string]int{"count": count})
		},
	}
}

func newStatsCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the number of licenses per category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := config.NewClient(cmd, v)
			if err != nil {
				return err
			}

			stats, err := cli.Stats(cmd.Context())
			if err != nil {
				return err
			}

			output := v.GetString(config.KeyOutput)
			if output != "" && output != "table" {
				return printStructured(cmd, output, stats)
			}

			tw := newTableWriter()
			tw.AppendRows([]table.Row{
				{"TOTAL", stats.Total},
				{"OSI APPROVED", stats.OSIApproved},
				{"CHECKED", stats.Checked},
				{"UNCHECKED", stats.Unchecked},
			})
			cmd.Printf("%s\n", tw.Render())
			return nil
		},
	}
}

func newSearchCommand(v *viper.Viper) *cobra.Command {
	var fields []string

	cmd := &cobra.Command{
		Use:   "search [text]",
		Short: "Search licenses by full name, short name or text, ignoring case",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("text is required")
			}

			cli, err := config.NewClient(cmd, v)
			if err != nil {
				return err
			}

			docs, err := cli.Search(cmd.Context(), args[0], fields...)
			if err != nil {
				return err
			}

			return printLicenses(cmd, v.GetString(config.KeyOutput), docs)
		},
	}

	cmd.Flags().StringSliceVar(&fields, "field", nil, "The fields to search, by wire name")
	return cmd
}
