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

func newFindCommand(v *viper.Viper) *cobra.Command {
	var (
		shortName   string
		checked     bool
		osiApproved bool
		where       []string
	)

	cmd := &cobra.Command{
		Use:   "find",
		Short: "Find licenses matching all the given conditions",
		Example: `  licensectl license find --short-name MIT
  licensectl license find --checked=false --osi-approved
  licensectl license find --where family=permissive`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			predicate, err := parsePairs(where)
			if err != nil {
				return err
			}
			selector := types.Selector(predicate)
			if selector == nil {
				selector = types.Selector{}
			}

			flags := cmd.Flags()
			if flags.Changed("short-name") {
				selector[types.FieldShortName] = shortName
			}
			if flags.Changed("checked") {
				selector[types.FieldChecked] = checked
			}
			if flags.Changed("osi-approved") {
				selector[types.FieldOSIApproved] = osiApproved
			}
			if len(selector) == 0 {
				return errors.New("at least one condition is required")
			}

			cli, err := config.NewClient(cmd, v)
			if err != nil {
				return err
			}

			docs, err := cli.FindByPredicate(cmd.Context(), selector)
			if err != nil {
				return err
			}

			return printLicenses(cmd, v.GetString(config.KeyOutput), docs)
		},
	}

	cmd.Flags().StringVar(&shortName, "short-name", "", "The SPDX short name")
	cmd.Flags().BoolVar(&checked, "checked", false, "Whether the license is reviewed")
	cmd.Flags().BoolVar(&osiApproved, "osi-approved", false, "Whether the license is OSI approved")
	cmd.Flags().StringArrayVar(&where, "where", nil, "Condition as field=value, repeatable")
	return cmd
}
