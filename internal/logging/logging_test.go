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

package logging_test

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"

	"github.com/sw360/license-curator/internal/logging"
)

func TestSetLogLevel(t *testing.T) {
	defer func() { assert.NoError(t, logging.SetLogLevel("info")) }()

	assert.NoError(t, logging.SetLogLevel("WARN"))
	assert.False(t, logging.Enabled(zapcore.InfoLevel))
	assert.True(t, logging.Enabled(zapcore.ErrorLevel))

	assert.NoError(t, logging.SetLogLevel("debug"))
	assert.True(t, logging.Enabled(zapcore.DebugLevel))

	assert.Error(t, logging.SetLogLevel("verbose"))
}

func TestLevelAppliesToExistingLoggers(t *testing.T) {
	defer func() { assert.NoError(t, logging.SetLogLevel("info")) }()

	var buf bytes.Buffer
	logging.SetOutput(&buf)
	defer logging.SetOutput(os.Stderr)
	logger := logging.New("test", logging.NewField("db", "sw360db"))

	assert.NoError(t, logging.SetLogLevel("error"))
	logger.Warn("hidden")
	assert.NoError(t, logging.SetLogLevel("debug"))
	logger.Debug("shown")
	assert.NoError(t, logger.Sync())

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "sw360db")
}

func TestContext(t *testing.T) {
	logger := logging.Nop()
	ctx := logging.With(context.Background(), logger)
	assert.Same(t, logger, logging.From(ctx))

	assert.Same(t, logging.DefaultLogger(), logging.From(context.Background()))
}
