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

// Package main is the entry point of licensectl, the command line client
// of the license curation store.
package main

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sw360/license-curator/cmd/licensectl/config"
	"github.com/sw360/license-curator/cmd/licensectl/license"
)

// newRootCmd returns the root command bound to the given viper instance.
func newRootCmd(v *viper.Viper) (*cobra.Command, error) {
	rootCmd := &cobra.Command{
		Use:               "licensectl",
		Short:             "Curate the license documents of an SW360 CouchDB",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: config.Preload(v),
	}

	if err := config.AddFlags(rootCmd, v); err != nil {
		return nil, err
	}

	rootCmd.AddCommand(
		license.NewCmd(v),
		newPingCmd(v),
		newVersionCmd(v),
	)
	return rootCmd, nil
}

// Run executes CLI.
func Run(ctx context.Context, args []string) int {
	if err := execute(ctx, config.New(), args, os.Stdout, os.Stderr); err != nil {
		return 1
	}

	return 0
}

// execute runs the command line args and prints a failure to stderr.
func execute(ctx context.Context, v *viper.Viper, args []string, stdout, stderr io.Writer) error {
	rootCmd, err := newRootCmd(v)
	if err != nil {
		printError(stderr, err)
		return err
	}

	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetArgs(args)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError(stderr, err)
		return err
	}

	return nil
}
