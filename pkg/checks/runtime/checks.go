// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package runtime

import (
	"iter"
	"slices"
	"sync"

	"github.com/telekom/icmptrace/pkg/checks"
)

// Checks holds the running checks.
type Checks struct {
	mu     sync.RWMutex
	checks []checks.Check
}

// Add adds a new check.
func (c *Checks) Add(check checks.Check) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks = append(c.checks, check)
}

// Delete deletes a check.
func (c *Checks) Delete(check checks.Check) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks = slices.DeleteFunc(c.checks, func(exist checks.Check) bool {
		return exist.Name() == check.Name()
	})
}

// Get returns the check with the given name.
func (c *Checks) Get(name string) (checks.Check, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i := slices.IndexFunc(c.checks, func(exist checks.Check) bool {
		return exist.Name() == name
	})
	if i < 0 {
		return nil, false
	}
	return c.checks[i], true
}

// Iter returns configured checks in an iterable format
func (c *Checks) Iter() iter.Seq[checks.Check] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Values(slices.Clone(c.checks))
}
