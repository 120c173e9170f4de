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
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sw360/license-curator/api/types"
)

func newTableWriter() table.Writer {
	tw := table.NewWriter()
	tw.Style().Options.DrawBorder = false
	tw.Style().Options.SeparateColumns = false
	tw.Style().Options.SeparateFooter = false
	tw.Style().Options.SeparateHeader = false
	tw.Style().Options.SeparateRows = false
	return tw
}

// printStructured prints v as JSON or YAML.
func printStructured(cmd *cobra.Command, output string, v any) error {
	switch output {
	case "json":
		jsonOutput, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal JSON: %w", err)
		}
		cmd.Println(string(jsonOutput))
	case "yaml":
		yamlOutput, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal YAML: %w", err)
		}
		cmd.Print(string(yamlOutput))
	default:
		return fmt.Errorf("unknown output format: %s", output)
	}

	return nil
}

func printLicenses(cmd *cobra.Command, output string, docs []*types.LicenseDocument) error {
	switch output {
	case "", "table":
		tw := newTableWriter()
		tw.AppendHeader(table.Row{
			"ID",
			"REV",
			"SHORT NAME",
			"FULL NAME",
			"OSI",
			"CHECKED",
		})
		for _, doc := range docs {
			tw.AppendRow(table.Row{
				doc.ID,
				doc.Revision,
				doc.ShortName,
				doc.FullName,
				doc.OSIApproved,
				doc.Checked,
			})
		}
		cmd.Printf("%s\n", tw.Render())
		return nil
	default:
		if docs == nil {
			docs = []*types.LicenseDocument{}
		}
		return printStructured(cmd, output, docs)
	}
}

func printLicense(cmd *cobra.Command, output string, doc *types.LicenseDocument) error {
	switch output {
	case "", "table":
		tw := newTableWriter()
		tw.AppendRows([]table.Row{
			{"ID", doc.ID},
			{"REV", doc.Revision},
			{"TYPE", doc.Type},
			{"SHORT NAME", doc.ShortName},
			{"FULL NAME", doc.FullName},
			{"OSI APPROVED", doc.OSIApproved},
			{"CHECKED", doc.Checked},
		})
		for _, key := range slices.Sorted(maps.Keys(doc.Extensions)) {
			data, err := json.Marshal(doc.Extensions[key])
			if err != nil {
				return fmt.Errorf("marshal extension %s: %w", key, err)
			}
			tw.AppendRow(table.Row{key, string(data)})
		}
		cmd.Printf("%s\n", tw.Render())
		if doc.Text != "" {
			cmd.Printf("\n%s\n", doc.Text)
		}
		return nil
	default:
		return printStructured(cmd, output, doc)
	}
}

// printWrite prints the id and revision produced by a write.
func printWrite(cmd *cobra.Command, output, action, id, rev string) error {
	switch output {
	case "", "table":
		cmd.Printf("%s %s at %s\n", action, id, rev)
		return nil
	default:
		return printStructured(cmd, output, &types.WriteResult{OK: true, ID: id, Rev: rev})
	}
}
