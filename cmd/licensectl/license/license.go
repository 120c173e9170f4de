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

// Package license provides the license commands of licensectl.
package license

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewCmd returns the license command group.
func NewCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "license [command]",
		Aliases: []string{"licenses"},
		Short:   "Manage license documents",
	}

	cmd.AddCommand(
		newListCommand(v),
		newGetCommand(v),
		newCreateCommand(v),
		newUpdateCommand(v),
		newCheckCommand(v),
		newDeleteCommand(v),
		newFindCommand(v),
		newCountCommand(v),
		newSearchCommand(v),
		newImportCommand(v),
		newStatsCommand(v),
	)
	return cmd
}

// parseValue converts a flag value to the JSON value it stands for.
func parseValue(raw string) any {
	switch raw {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}

	if _, err := strconv.ParseFloat(raw, 64); err == nil {
		return json.Number(raw)
	}
	return raw
}

// parsePairs parses key=value pairs.
func parsePairs(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	values := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid pair %q: expected key=value", pair)
		}
		values[key] = parseValue(value)
	}
	return values, nil
}
