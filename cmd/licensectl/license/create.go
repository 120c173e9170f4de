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

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sw360/license-curator/api/types"
	"github.com/sw360/license-curator/cmd/licensectl/config"
)

func newCreateCommand(v *viper.Viper) *cobra.Command {
	var (
		fields     types.LicenseFields
		extensions []string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a license document",
		Long: "Create a license document. Short names are not unique: creating a " +
			"license whose short name exists adds a second document.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ext, err := parsePairs(extensions)
			if err != nil {
				return err
			}
			fields.Extensions = ext

			cli, err := config.NewClient(cmd, v)
			if err != nil {
				return err
			}

			id, rev, err := cli.Create(cmd.Context(), fields)
			if err != nil {
				return err
			}

			return printWrite(cmd, v.GetString(config.KeyOutput), "created", id, rev)
		},
	}

	cmd.Flags().StringVar(&fields.FullName, "full-name", "", "The full name of the license")
	cmd.Flags().StringVar(&fields.ShortName, "short-name", "", "The SPDX short name of the license")
	cmd.Flags().StringVar(&fields.Text, "text", "", "The license text")
	cmd.Flags().BoolVar(&fields.OSIApproved, "osi-approved", false, "Whether the license is OSI approved")
	cmd.Flags().BoolVar(&fields.Checked, "checked", false, "Whether the license is reviewed")
	cmd.Flags().StringArrayVar(&extensions, "ext", nil, "Extension field as key=value, repeatable")
	_ = cmd.MarkFlagRequired("full-name")
	_ = cmd.MarkFlagRequired("short-name")
	return cmd
}

func newDeleteCommand(v *viper.Viper) *cobra.Command {
	var rev string

	cmd := &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a license document at the given revision",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("id is required")
			}
			if rev == "" {
				return errors.New("--rev is required")
			}

			cli, err := config.NewClient(cmd, v)
			if err != nil {
				return err
			}

			if err := cli.Delete(cmd.Context(), args[0], rev); err != nil {
				return err
			}

			output := v.GetString(config.KeyOutput)
			if output == "" || output == "table" {
				cmd.Printf("deleted %s\n", args[0])
				return nil
			}
			return printStructured(cmd, output, &types.WriteResult{OK: true, ID: args[0]})
		},
	}

	cmd.Flags().StringVar(&rev, "rev", "", "The current revision of the document")
	return cmd
}
