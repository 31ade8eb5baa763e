//go:build !solution

// Package tuning holds the knobs shared by the lock implementations:
// how long a contended lock spins before it sleeps, how often a spinlock
// yields the processor and whether contention statistics are collected.
//
// Parameters are process-wide. They can be loaded from a YAML file:
//
//	mutex_spin: 100
//	spin_yield: 64
//	stats: true
package tuning

import (
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	"gopkg.in/yaml.v2"
)

var ErrInvalid = errors.New("invalid tuning parameters")

// Params are the tunable parameters.
type Params struct {
	// MutexSpin is the number of polls of a locked mutex word before
	// the waiter goes to sleep on the futex.
	MutexSpin int `yaml:"mutex_spin"`
	// SpinYield is the number of failed spinlock attempts between two
	// calls to runtime.Gosched. Zero disables yielding.
	SpinYield int `yaml:"spin_yield"`
	// Stats enables contention accounting in lockstat.
	Stats bool `yaml:"stats"`
}

// Default returns the built-in parameters.
func Default() Params {
	return Params{
		MutexSpin: 100,
		SpinYield: 64,
		Stats:     true,
	}
}

var current atomic.Pointer[Params]

func init() {
	p := Default()
	current.Store(&p)
}

// Get returns the parameters currently in effect.
func Get() Params {
	return *current.Load()
}

// Set validates p and makes it current. It returns the previous parameters.
func Set(p Params) (Params, error) {
	if err := p.Validate(); err != nil {
		return Get(), err
	}
	return *current.Swap(&p), nil
}

// Validate checks that p is usable.
func (p Params) Validate() error {
	if p.MutexSpin < 0 {
		return fmt.Errorf("%w: mutex_spin must be non-negative, got %d", ErrInvalid, p.MutexSpin)
	}
	if p.SpinYield < 0 {
		return fmt.Errorf("%w: spin_yield must be non-negative, got %d", ErrInvalid, p.SpinYield)
	}
	return nil
}

// Parse decodes YAML on top of the defaults, so omitted keys keep
// their default values.
func Parse(data []byte) (Params, error) {
	p := Default()
	// Пустой файл - значения по умолчанию
	if len(data) == 0 {
		return p, nil
	}
	if err := yaml.UnmarshalStrict(data, &p); err != nil {
		return Params{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// Load reads parameters from a YAML file.
func Load(path string) (Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Params{}, fmt.Errorf("failed to read tuning file: %w", err)
	}
	return Parse(data)
}
