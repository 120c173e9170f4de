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

// Package config provides the configuration of licensectl. Values come
// from flags, LICENSECTL_* environment variables and the config file, in
// that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/sw360/license-curator/curation"
	"github.com/sw360/license-curator/internal/logging"
)

// Keys of the configuration values.
const (
	KeyConfig   = "config"
	KeyURL      = "url"
	KeyUsername = "username"
	KeyPassword = "password"
	KeyDatabase = "database"
	KeyTimeout  = "timeout"
	KeyLogLevel = "log-level"
	KeyOutput   = "output"
)

const envPrefix = "LICENSECTL"

// ErrUnknownOutput is returned when the output format is not supported.
var ErrUnknownOutput = errors.New("--output must be 'table', 'json' or 'yaml'")

// ensureDir ensures that the directory of licensectl exists.
func ensureDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}

	dir := filepath.Join(home, ".licensectl")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("mkdir: %w", err)
	}
	return dir, nil
}

// DefaultPath returns the path of the default config file.
func DefaultPath() (string, error) {
	dir, err := ensureDir()
	if err != nil {
		return "", fmt.Errorf("ensure licensectl dir: %w", err)
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// New creates a viper instance reading LICENSECTL_* environment variables,
// with the defaults of the curation client.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyURL, curation.DefaultURL)
	v.SetDefault(KeyUsername, curation.DefaultUsername)
	v.SetDefault(KeyDatabase, curation.DefaultDatabase)
	v.SetDefault(KeyTimeout, curation.DefaultRequestTimeout)
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyOutput, "table")
	return v
}

// AddFlags adds the connection flags to the command and binds them to v.
func AddFlags(cmd *cobra.Command, v *viper.Viper) error {
	flags := cmd.PersistentFlags()
	flags.String(KeyConfig, "", "Config file (default ~/.licensectl/config.yaml)")
	flags.String(KeyURL, curation.DefaultURL, "Base URL of the document store")
	flags.StringP(KeyUsername, "u", curation.DefaultUsername, "User name of the document store")
	flags.String(KeyPassword, "", "Password of the document store, prompted when empty")
	flags.StringP(KeyDatabase, "d", curation.DefaultDatabase, "Database holding the licenses")
	flags.Duration(KeyTimeout, curation.DefaultRequestTimeout, "Timeout of each request")
	flags.String(KeyLogLevel, "warn", "Log level: debug, info, warn or error")
	flags.StringP(KeyOutput, "o", "table", "Output format: table, json or yaml")

	if err := v.BindPFlags(flags); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}
	return nil
}

// Preload reads the config file, applies the log level and validates the
// output format. It is meant to be the PersistentPreRunE of the root
// command.
func Preload(v *viper.Viper) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := readConfigFile(v); err != nil {
			return err
		}

		if err := logging.SetLogLevel(v.GetString(KeyLogLevel)); err != nil {
			return err
		}

		switch v.GetString(KeyOutput) {
		case "", "table", "json", "yaml":
		default:
			return ErrUnknownOutput
		}

		return nil
	}
}

func readConfigFile(v *viper.Viper) error {
	path := v.GetString(KeyConfig)
	explicit := path != ""
	if !explicit {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil
		}
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	return nil
}

// ClientConfig returns the configuration of the curation client.
func ClientConfig(v *viper.Viper) *curation.Config {
	return &curation.Config{
		URL:            v.GetString(KeyURL),
		Username:       v.GetString(KeyUsername),
		Password:       v.GetString(KeyPassword),
		Database:       v.GetString(KeyDatabase),
		RequestTimeout: v.GetDuration(KeyTimeout).String(),
	}
}

// NewClient creates a curation client from the configuration. A missing
// password is prompted when stdin is a terminal.
func NewClient(cmd *cobra.Command, v *viper.Viper) (*curation.Client, error) {
	conf := ClientConfig(v)
	if conf.Password == "" && conf.Username != "" {
		password, err := readPassword(cmd)
		if err != nil {
			return nil, err
		}
		conf.Password = password
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}

	logger := logging.New("licensectl", logging.NewField("database", conf.Database))
	return curation.New(conf, curation.WithLogger(logger.Desugar())), nil
}

func readPassword(cmd *cobra.Command) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", nil
	}

	cmd.PrintErr("Enter Password: ")
	bytePassword, err := term.ReadPassword(fd)
	cmd.PrintErrln()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	return string(bytePassword), nil
}
