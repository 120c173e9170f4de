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
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/sw360/license-curator/api/types"
	"github.com/sw360/license-curator/cmd/licensectl/config"
	"github.com/sw360/license-curator/internal/version"
)

func newVersionCmd(v *viper.Viper) *cobra.Command {
	var clientOnly bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number of licensectl and the document store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var versionInfo types.VersionInfo
			versionInfo.ClientVersion = clientVersion()

			var serverErr error
			if !clientOnly {
				cli, err := config.NewClient(cmd, v)
				if err != nil {
					return err
				}
				versionInfo.ServerVersion, serverErr = cli.Ping(cmd.Context())
			}

			switch v.GetString(config.KeyOutput) {
			case "yaml":
				marshalled, err := yaml.Marshal(&versionInfo)
				if err != nil {
					return fmt.Errorf("marshal YAML: %w", err)
				}
				cmd.Print(string(marshalled))
			case "json":
				marshalled, err := json.MarshalIndent(&versionInfo, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal JSON: %w", err)
				}
				cmd.Println(string(marshalled))
			default:
				cmd.Printf("licensectl: %s\n", versionInfo.ClientVersion.Version)
				cmd.Printf("Go: %s\n", versionInfo.ClientVersion.GoVersion)
				if versionInfo.ClientVersion.BuildDate != "" {
					cmd.Printf("Build Date: %s\n", versionInfo.ClientVersion.BuildDate)
				}
				if versionInfo.ServerVersion != nil {
					cmd.Printf("Server: %s\n", versionInfo.ServerVersion.Version)
				}
			}

			if serverErr != nil {
				cmd.PrintErrf("Error fetching server version: %v\n", serverErr)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&clientOnly, "client", false, "Shows client version only. (no server required)")
	return cmd
}

func clientVersion() *types.VersionDetail {
	return &types.VersionDetail{
		Version:   version.Version,
		GitCommit: version.GitCommit,
		GoVersion: runtime.Version(),
		BuildDate: version.BuildDate,
	}
}
