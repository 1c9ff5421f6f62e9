package tasks

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/mitchellh/mapstructure"

	"github.com/nemanja-m/gopool/internal/pool"
)

var (
	ErrUnknownKind   = errors.New("unknown task kind")
	ErrInvalidParams = errors.New("invalid task params")
)

// Params are the loosely typed arguments of a task kind, as received from JSON,
// protobuf structs or command line flags.
type Params map[string]any

// Factory builds a ready-to-submit task from params.
type Factory func(params Params) (pool.Task, error)

var (
	mu       sync.RWMutex
	registry = make(map[string]Factory)
)

func init() {
	for kind, factory := range map[string]Factory{
		"sleep":    newSleepTask,
		"churn":    newChurnTask,
		"sum":      newSumTask,
		"checksum": newChecksumTask,
	} {
		if err := Register(kind, factory); err != nil {
			panic(err)
		}
	}
}

func Register(kind string, factory Factory) error {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := registry[kind]; exists {
		return fmt.Errorf("task kind already registered: %s", kind)
	}
	registry[kind] = factory
	return nil
}

func Get(kind string) (Factory, error) {
	mu.RLock()
	defer mu.RUnlock()
	factory, exists := registry[kind]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	return factory, nil
}

func List() []string {
	mu.RLock()
	defer mu.RUnlock()
	return slices.Sorted(maps.Keys(registry))
}

// Build creates a task of the given kind labelled with description. The kind is
// used as the label when description is empty.
func Build(kind, description string, params Params) (pool.Task, error) {
	factory, err := Get(kind)
	if err != nil {
		return nil, err
	}
	task, err := factory(params)
	if err != nil {
		return nil, err
	}
	if description == "" {
		description = kind
	}
	return pool.Named(description, task), nil
}

// decodeParams fills out from params. Numbers and booleans may be given as
// strings, durations as Go duration strings. Unknown keys are rejected.
func decodeParams(params Params, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("mapstructure.NewDecoder: %w", err)
	}
	if err := decoder.Decode(map[string]any(params)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return nil
}
