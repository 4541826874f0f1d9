// Package kv defines the string key-value store that persists user preferences.
package kv

import (
	"fmt"
	"sync"
)

// Drivers.
const (
	DriverSQLite = "sqlite"
	DriverBolt   = "bolt"
	DriverMemory = "memory"
)

// Provider is the interface for persisted key-value pairs.
type Provider interface {
	// Get returns the value stored under key and whether it exists.
	Get(key string) (string, bool, error)
	// Set durably stores value under key before returning.
	Set(key, value string) error
	// Close releases the underlying resources.
	Close() error
}

// Open opens the provider selected by driver at path.
func Open(driver, path string) (Provider, error) {
	switch driver {
	case DriverSQLite, "":
		return OpenSQLite(path)
	case DriverBolt:
		return OpenBolt(path)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("kv: unknown driver %q", driver)
	}
}

// Memory is an in-process Provider, used in tests and for throwaway sessions.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

// Get implements Provider.
func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Set implements Provider.
func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Close implements Provider.
func (m *Memory) Close() error { return nil }
