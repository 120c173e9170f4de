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

package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode_String(t *testing.T) {
	tests := []struct {
		name string
		code StatusCode
		want string
	}{
		{"InvalidArgument", ErrCodeInvalidArgument, "invalid_argument"},
		{"NotFound", ErrCodeNotFound, "not_found"},
		{"FailedPrecondition", ErrCodeFailedPrecondition, "failed_precondition"},
		{"Internal", ErrCodeInternal, "internal"},
		{"Unavailable", ErrCodeUnavailable, "unavailable"},
		{"Unauthenticated", ErrCodeUnauthenticated, "unauthenticated"},
		{"Unknown", StatusCode(999), "code_999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.String())
		})
	}
}

func TestStatusCode_Category(t *testing.T) {
	for _, code := range []StatusCode{
		ErrCodeInvalidArgument,
		ErrCodeNotFound,
		ErrCodeFailedPrecondition,
		ErrCodeUnauthenticated,
	} {
		t.Run("client_"+code.String(), func(t *testing.T) {
			assert.True(t, code.IsClientError())
			assert.False(t, code.IsServerError())
		})
	}

	for _, code := range []StatusCode{ErrCodeInternal, ErrCodeUnavailable} {
		t.Run("server_"+code.String(), func(t *testing.T) {
			assert.False(t, code.IsClientError())
			assert.True(t, code.IsServerError())
		})
	}

	t.Run("retryable", func(t *testing.T) {
		assert.True(t, ErrCodeUnavailable.IsRetryable())
		assert.True(t, ErrCodeFailedPrecondition.IsRetryable())
		assert.False(t, ErrCodeNotFound.IsRetryable())
		assert.False(t, ErrCodeUnauthenticated.IsRetryable())
		assert.False(t, ErrCodeInvalidArgument.IsRetryable())
	})
}

func TestStatusOf(t *testing.T) {
	t.Run("direct", func(t *testing.T) {
		assert.Equal(t, ErrCodeNotFound, StatusOf(NotFound("missing")))
	})

	t.Run("wrapped twice", func(t *testing.T) {
		err := fmt.Errorf("delete: %w", fmt.Errorf("id-1: %w", FailedPrecond("conflict")))
		assert.Equal(t, ErrCodeFailedPrecondition, StatusOf(err))
		assert.True(t, IsStatus(err, ErrCodeFailedPrecondition))
	})

	t.Run("standard error", func(t *testing.T) {
		assert.Equal(t, StatusCode(0), StatusOf(errors.New("plain")))
	})

	t.Run("nil", func(t *testing.T) {
		assert.Equal(t, StatusCode(0), StatusOf(nil))
		assert.False(t, IsStatus(nil, ErrCodeNotFound))
	})
}

func TestSentinelMatching(t *testing.T) {
	errConflict := FailedPrecond("revision conflict").WithCode("ErrRevisionConflict")
	errMissing := NotFound("document not found").WithCode("ErrDocumentNotFound")

	err := fmt.Errorf("update lic-1: %w", errConflict)
	assert.ErrorIs(t, err, errConflict)
	assert.NotErrorIs(t, err, errMissing)
	assert.Equal(t, "ErrRevisionConflict", CodeOf(err))
	assert.Equal(t, "", CodeOf(errors.New("plain")))
}

func TestErrorInfoOf(t *testing.T) {
	t.Run("status error with metadata", func(t *testing.T) {
		base := Unavailable("store unreachable").WithCode("ErrTransport")
		err := WithMetadata(fmt.Errorf("get: %w", base), map[string]string{"method": "GET"})
		info := ErrorInfoOf(err)

		assert.Equal(t, ErrCodeUnavailable, info.Status)
		assert.Equal(t, "ErrTransport", info.Code)
		assert.Equal(t, "get: store unreachable", info.Message)
		assert.True(t, info.IsServer)
		assert.True(t, info.IsRetryable)
		assert.Equal(t, "unavailable", info.StatusString)
		assert.Equal(t, "GET", info.Metadata["method"])
	})

	t.Run("nil", func(t *testing.T) {
		assert.Equal(t, ErrorInfo{}, ErrorInfoOf(nil))
	})
}

func TestWithMetadata(t *testing.T) {
	t.Run("keeps status", func(t *testing.T) {
		err := WithMetadata(NotFound("missing"), map[string]string{"reason": "deleted"})
		assert.Equal(t, ErrCodeNotFound, StatusOf(err))
		assert.Equal(t, "deleted", Metadata(err)["reason"])
	})

	t.Run("nil error", func(t *testing.T) {
		assert.Nil(t, WithMetadata(nil, map[string]string{"k": "v"}))
	})

	t.Run("empty metadata returns the original", func(t *testing.T) {
		base := Internal("boom")
		assert.Equal(t, base, WithMetadata(base, nil))
		assert.Equal(t, base, WithMetadata(base, map[string]string{}))
	})

	t.Run("merge", func(t *testing.T) {
		base := Unauthenticated("bad credentials")
		err := WithMetadata(WithMetadata(base, map[string]string{"error": "unauthorized"}),
			map[string]string{"reason": "Name or password is incorrect."})

		meta := Metadata(err)
		assert.Equal(t, "unauthorized", meta["error"])
		assert.Equal(t, "Name or password is incorrect.", meta["reason"])
		assert.ErrorIs(t, err, base)
	})

	t.Run("returned map is a copy", func(t *testing.T) {
		err := WithMetadata(Internal("x"), map[string]string{"k": "v"})
		Metadata(err)["k"] = "changed"
		assert.Equal(t, "v", Metadata(err)["k"])
	})
}
