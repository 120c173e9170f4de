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

package curation

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sw360/license-curator/internal/validation"
)

// Below are the default values of the connection configuration.
const (
	DefaultURL            = "http://localhost:5984"
	DefaultUsername       = "admin"
	DefaultPassword       = "password"
	DefaultDatabase       = "sw360db"
	DefaultRequestTimeout = 30 * time.Second
)

// Config is the configuration for creating a Client instance.
type Config struct {
	// URL is the base URL of the document store.
	URL string `yaml:"URL" validate:"required,url"`

	// Username is the user name sent with every request.
	Username string `yaml:"Username"`

	// Password is the password sent with every request.
	Password string `yaml:"Password"`

	// Database is the database holding the license documents.
	Database string `yaml:"Database" validate:"required,not_blank"`

	// RequestTimeout bounds every request, e.g. "30s".
	RequestTimeout string `yaml:"RequestTimeout" validate:"omitempty,duration"`
}

// NewConfig returns a Config with the default values.
func NewConfig() *Config {
	return &Config{
		URL:            DefaultURL,
		Username:       DefaultUsername,
		Password:       DefaultPassword,
		Database:       DefaultDatabase,
		RequestTimeout: DefaultRequestTimeout.String(),
	}
}

// NewConfigFromFile returns a Config from the given yaml file. Missing
// values are set to their defaults.
func NewConfigFromFile(path string) (*Config, error) {
	conf := &Config{}
	bytes, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err = yaml.Unmarshal(bytes, conf); err != nil {
		return nil, fmt.Errorf("unmarshal config file: %w", err)
	}

	conf.ensureDefaultValue()
	return conf, nil
}

func (c *Config) ensureDefaultValue() {
	if c.URL == "" {
		c.URL = DefaultURL
	}
	if c.Database == "" {
		c.Database = DefaultDatabase
	}
	if c.RequestTimeout == "" {
		c.RequestTimeout = DefaultRequestTimeout.String()
	}
}

// Validate returns an error if the provided Config is invalidated. New does
// not call it: an unusable URL is reported by the first operation.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}

// ParseRequestTimeout returns the request timeout. An empty value yields
// DefaultRequestTimeout.
func (c *Config) ParseRequestTimeout() (time.Duration, error) {
	if c.RequestTimeout == "" {
		return DefaultRequestTimeout, nil
	}

	result, err := time.ParseDuration(c.RequestTimeout)
	if err != nil {
		return 0, fmt.Errorf("parse request timeout %q: %w", c.RequestTimeout, err)
	}
	if result <= 0 {
		return 0, fmt.Errorf("parse request timeout %q: must be positive", c.RequestTimeout)
	}

	return result, nil
}
