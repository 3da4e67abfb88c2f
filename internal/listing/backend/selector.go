// Package backend holds the process-wide listing service, built once for the
// configured storage backend.
package backend

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Dhee091/Housing-Management-sub000/internal/listing/usecase"
)

type Kind string

const (
	KindMock        Kind = "mock"
	KindRemoteStore Kind = "remote-store"
)

var (
	ErrNotInitialized = errors.New("listing backend not initialized")
	ErrUnknownKind    = errors.New("unknown listing backend")
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindMock, KindRemoteStore:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Builder constructs the listing service for one backend.
type Builder func(ctx context.Context) (*usecase.ListingUsecase, error)

type Builders map[Kind]Builder

var (
	mu      sync.Mutex
	current *usecase.ListingUsecase
	kind    Kind
)

// Initialize builds the service for k on first call and returns the same
// instance on every later call, whatever kind is passed. A failed build
// leaves the selector uninitialized so it can be retried.
func Initialize(ctx context.Context, k Kind, builders Builders) (*usecase.ListingUsecase, error) {
	mu.Lock()
	defer mu.Unlock()

	if current != nil {
		return current, nil
	}
	build, ok := builders[k]
	if !ok || build == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, k)
	}
	uc, err := build(ctx)
	if err != nil {
		return nil, fmt.Errorf("build %s backend: %w", k, err)
	}
	current, kind = uc, k
	return current, nil
}

func Existing() (*usecase.ListingUsecase, error) {
	mu.Lock()
	defer mu.Unlock()
	if current == nil {
		return nil, ErrNotInitialized
	}
	return current, nil
}

// Active reports the kind the service was built for, or "" before Initialize.
func Active() Kind {
	mu.Lock()
	defer mu.Unlock()
	return kind
}

// Reset forgets the current service. Tests only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	current, kind = nil, ""
}
