// Threadrec - Forum Thread Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threadrec

package config

import (
	"errors"
	"fmt"

	"github.com/tomtom215/threadrec/internal/logging"
	"github.com/tomtom215/threadrec/internal/validation"
)

// Validate checks field rules from the struct tags and the cross-field
// constraints tags cannot express.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateRecommend(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateStore() error {
	if !c.Store.InMemory && c.Store.Path == "" {
		return errors.New("BADGER_PATH is required unless BADGER_IN_MEMORY=true")
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := c.Recommend
	if r.DefaultLimit > r.MaxLimit {
		return fmt.Errorf("recommend.default_limit (%d) must not exceed recommend.max_limit (%d)", r.DefaultLimit, r.MaxLimit)
	}
	if r.MinCandidates > r.MaxCandidates {
		return fmt.Errorf("recommend.min_candidates (%d) must not exceed recommend.max_candidates (%d)", r.MinCandidates, r.MaxCandidates)
	}
	if _, err := r.Engine(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
	}
	return nil
}
