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

package main

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/sw360/license-curator/api/types"
	"github.com/sw360/license-curator/cmd/licensectl/config"
)

// pingResult is the output of the ping command.
type pingResult struct {
	Server         *types.ServerInfo `json:"server" yaml:"server"`
	Database       string            `json:"database" yaml:"database"`
	DatabaseExists bool              `json:"databaseExists" yaml:"databaseExists"`
	Databases      []string          `json:"databases,omitempty" yaml:"databases,omitempty"`
}

func newPingCmd(v *viper.Viper) *cobra.Command {
	var listDatabases bool

	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Check the connection to the document store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := config.NewClient(cmd, v)
			if err != nil {
				return err
			}

			info, err := cli.Ping(cmd.Context())
			if err != nil {
				return err
			}
			names, err := cli.ListDatabases(cmd.Context())
			if err != nil {
				return err
			}

			res := &pingResult{
				Server:         info,
				Database:       cli.Database(),
				DatabaseExists: slices.Contains(names, cli.Database()),
			}
			if listDatabases {
				res.Databases = names
			}

			switch output := v.GetString(config.KeyOutput); output {
			case "json":
				marshalled, err := json.MarshalIndent(res, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal JSON: %w", err)
				}
				cmd.Println(string(marshalled))
			case "yaml":
				marshalled, err := yaml.Marshal(res)
				if err != nil {
					return fmt.Errorf("marshal YAML: %w", err)
				}
				cmd.Print(string(marshalled))
			default:
				cmd.Printf("Connected: %s %s\n", info.CouchDB, info.Version)
				if res.DatabaseExists {
					cmd.Printf("Database %s: found\n", res.Database)
				} else {
					cmd.Printf("Database %s: missing\n", res.Database)
				}
				for _, name := range res.Databases {
					cmd.Printf("  %s\n", name)
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&listDatabases, "databases", false, "List the databases of the store")
	return cmd
}
