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
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sw360/license-curator/api/types"
	"github.com/sw360/license-curator/cmd/licensectl/config"
	"github.com/sw360/license-curator/curation"
	"github.com/sw360/license-curator/internal/logging"
)

// DefaultMaxRetries is the number of times a conflicting update is
// re-applied.
const DefaultMaxRetries = 5

// retryInterval is the first wait before re-applying a conflicting update.
var retryInterval = 100 * time.Millisecond

// mutation applies the intended change to freshly read fields.
type mutation func(fields *types.LicenseFields) error

// applyWithRetry reads the document, applies the change and writes it back
// at the revision it read. On a revision conflict it starts over from a
// fresh read, so the change is applied to the latest state and not to a
// stale copy. Any other error stops it.
func applyWithRetry(
	ctx context.Context,
	cli *curation.Client,
	id string,
	maxRetries uint64,
	change mutation,
) (string, error) {
	logger := logging.From(ctx)

	var rev string
	attempt := 0
	operation := func() error {
		attempt++

		doc, err := cli.Get(ctx, id)
		if err != nil {
			return backoff.Permanent(err)
		}
		if !doc.IsLicense() {
			return backoff.Permanent(errors.New(id + " is not a license document"))
		}

		fields := doc.LicenseFields.Clone()
		if err := change(&fields); err != nil {
			return backoff.Permanent(err)
		}

		rev, err = cli.Update(ctx, id, doc.Revision, fields)
		if err == nil {
			return nil
		}
		if curation.KindOf(err) != curation.KindRevisionConflict {
			return backoff.Permanent(err)
		}

		logger.Warnf("attempt %d: %s changed concurrently, retrying", attempt, id)
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = retryInterval
	if err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(b, maxRetries), ctx)); err != nil {
		return "", err
	}

	return rev, nil
}

func newUpdateCommand(v *viper.Viper) *cobra.Command {
	var (
		update     types.LicenseFields
		extensions []string
		unset      []string
		maxRetries uint64
	)

	cmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Update fields of a license document",
		Long: "Update fields of a license document. Only the given flags are " +
			"changed; when another writer changes the document first, the " +
			"change is applied again to the new revision.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("id is required")
			}

			ext, err := parsePairs(extensions)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			change := func(fields *types.LicenseFields) error {
				if flags.Changed("full-name") {
					fields.FullName = update.FullName
				}
				if flags.Changed("short-name") {
					fields.ShortName = update.ShortName
				}
				if flags.Changed("text") {
					fields.Text = update.Text
				}
				if flags.Changed("osi-approved") {
					fields.OSIApproved = update.OSIApproved
				}
				if flags.Changed("checked") {
					fields.Checked = update.Checked
				}
				for _, key := range unset {
					delete(fields.Extensions, key)
				}
				for key, value := range ext {
					if fields.Extensions == nil {
						fields.Extensions = make(map[string]any)
					}
					fields.Extensions[key] = value
				}
				return nil
			}

			cli, err := config.NewClient(cmd, v)
			if err != nil {
				return err
			}

			ctx := logging.With(cmd.Context(), logging.New("licensectl"))
			rev, err := applyWithRetry(ctx, cli, args[0], maxRetries, change)
			if err != nil {
				return err
			}

			return printWrite(cmd, v.GetString(config.KeyOutput), "updated", args[0], rev)
		},
	}

	cmd.Flags().StringVar(&update.FullName, "full-name", "", "The full name of the license")
	cmd.Flags().StringVar(&update.ShortName, "short-name", "", "The SPDX short name of the license")
	cmd.Flags().StringVar(&update.Text, "text", "", "The license text")
	cmd.Flags().BoolVar(&update.OSIApproved, "osi-approved", false, "Whether the license is OSI approved")
	cmd.Flags().BoolVar(&update.Checked, "checked", false, "Whether the license is reviewed")
	cmd.Flags().StringArrayVar(&extensions, "ext", nil, "Extension field to set as key=value, repeatable")
	cmd.Flags().StringArrayVar(&unset, "unset-ext", nil, "Extension field to remove, repeatable")
	cmd.Flags().Uint64Var(&maxRetries, "max-retries", DefaultMaxRetries, "How many times a conflicting update is re-applied")
	return cmd
}

func newCheckCommand(v *viper.Viper) *cobra.Command {
	var (
		unchecked  bool
		maxRetries uint64
	)

	cmd := &cobra.Command{
		Use:   "check [id]",
		Short: "Mark a license as reviewed",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("id is required")
			}

			cli, err := config.NewClient(cmd, v)
			if err != nil {
				return err
			}

			ctx := logging.With(cmd.Context(), logging.New("licensectl"))
			rev, err := applyWithRetry(ctx, cli, args[0], maxRetries, func(fields *types.LicenseFields) error {
				fields.Checked = !unchecked
				return nil
			})
			if err != nil {
				return err
			}

			return printWrite(cmd, v.GetString(config.KeyOutput), "checked", args[0], rev)
		},
	}

	cmd.Flags().BoolVar(&unchecked, "undo", false, "Mark the license as not reviewed instead")
	cmd.Flags().Uint64Var(&maxRetries, "max-retries", DefaultMaxRetries, "How many times a conflicting update is re-applied")
	return cmd
}
