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
	"fmt"
	"io"

	"github.com/sw360/license-curator/pkg/errors"
)

// printError renders a failed command with the status code of the error and
// the reason given by the document store.
func printError(w io.Writer, err error) {
	info := errors.ErrorInfoOf(err)
	fmt.Fprintf(w, "Error: %s\n", info.Message)
	if info.Code != "" {
		fmt.Fprintf(w, "  code: %s (%s)\n", info.Code, info.StatusString)
	}
	if reason := info.Metadata["reason"]; reason != "" {
		fmt.Fprintf(w, "  reason: %s\n", reason)
	}

	if !info.IsRetryable {
		return
	}
	if info.Status == errors.ErrCodeFailedPrecondition {
		fmt.Fprintln(w, "  hint: the document changed, get it again and retry with the new revision")
		return
	}
	fmt.Fprintln(w, "  hint: the store may be unreachable, check the document before retrying a write")
}
