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
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/sw360/license-curator/api/types"
	"github.com/sw360/license-curator/cmd/licensectl/config"
)

// Import outcomes.
const (
	statusCreated = "created"
	statusExists  = "exists"
	statusFailed  = "failed"
)

// importResult is the outcome of one entry of an import file.
type importResult struct {
	ShortName string `json:"shortName" yaml:"shortName"`
	Status    string `json:"status" yaml:"status"`
	ID        string `json:"id,omitempty" yaml:"id,omitempty"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
}

// readImportFile reads a YAML list of licenses.
func readImportFile(path string) ([]types.LicenseFields, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read import file: %w", err)
	}

	var licenses []types.LicenseFields
	if err := yaml.Unmarshal(data, &licenses); err != nil {
		return nil, fmt.Errorf("unmarshal import file: %w", err)
	}
	return licenses, nil
}

func newImportCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "import [file]",
		Short: "Create the licenses of a YAML file that do not exist yet",
		Long: "Create the licenses of a YAML file whose short name is not in the " +
			"store yet. The check is best effort: a license created by someone " +
			"else between the check and the create is duplicated.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("file is required")
			}

			licenses, err := readImportFile(args[0])
			if err != nil {
				return err
			}

			cli, err := config.NewClient(cmd, v)
			if err != nil {
				return err
			}

			var result *multierror.Error
			results := make([]importResult, 0, len(licenses))
			for i, fields := range licenses {
				res := importResult{ShortName: fields.ShortName}

				existing, err := cli.FindByShortName(cmd.Context(), fields.ShortName)
				if err == nil && len(existing) > 0 {
					res.Status = statusExists
					res.ID = existing[0].ID
					results = append(results, res)
					continue
				}
				if err == nil {
					res.ID, _, err = cli.Create(cmd.Context(), fields)
				}
				if err != nil {
					res.Status = statusFailed
					res.Error = err.Error()
					result = multierror.Append(result, fmt.Errorf("entry %d (%s): %w", i, fields.ShortName, err))
				} else {
					res.Status = statusCreated
				}
				results = append(results, res)
			}

			if err := printImportResults(cmd, v.GetString(config.KeyOutput), results); err != nil {
				return err
			}
			return result.ErrorOrNil()
		},
	}
}

func printImportResults(cmd *cobra.Command, output string, results []importResult) error {
	if output != "" && output != "table" {
		return printStructured(cmd, output, results)
	}

	tw := newTableWriter()
	tw.AppendHeader(table.Row{"SHORT NAME", "STATUS", "ID", "ERROR"})
	for _, res := range results {
		tw.AppendRow(table.Row{res.ShortName, res.Status, res.ID, res.Error})
	}
	cmd.Printf("%s\n", tw.Render())
	return nil
}
