// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package db

import (
	"maps"
	"sync"

	"github.com/telekom/icmptrace/pkg/checks"
)

var _ DB = (*InMemory)(nil)

// DB stores the latest result of every check.
type DB interface {
	// Save stores the result of a check, replacing the previous one
	Save(result checks.ResultDTO)
	// Get returns the latest result of the check with the given name
	Get(check string) (result checks.Result, ok bool)
	// List returns the latest results of all checks
	List() map[string]checks.Result
}

// InMemory is a DB keeping the results in memory.
type InMemory struct {
	mu   sync.RWMutex
	data map[string]*checks.Result
}

func NewInMemory() *InMemory {
	return &InMemory{
		data: make(map[string]*checks.Result),
	}
}

func (i *InMemory) Save(result checks.ResultDTO) {
	if result.Result == nil {
		return
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.data[result.Name] = result.Result
}

func (i *InMemory) Get(check string) (checks.Result, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	res, ok := i.data[check]
	if !ok {
		return checks.Result{}, false
	}
	return *res, true
}

func (i *InMemory) List() map[string]checks.Result {
	i.mu.RLock()
	defer i.mu.RUnlock()
	results := make(map[string]checks.Result, len(i.data))
	for name, res := range maps.All(i.data) {
		results[name] = *res
	}
	return results
}
