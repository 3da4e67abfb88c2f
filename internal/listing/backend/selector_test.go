package backend

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Dhee091/Housing-Management-sub000/internal/adapter/repository/memory"
	"github.com/Dhee091/Housing-Management-sub000/internal/listing/usecase"
	"github.com/Dhee091/Housing-Management-sub000/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingBuilders(calls *int32) Builders {
	build := func(context.Context) (*usecase.ListingUsecase, error) {
		atomic.AddInt32(calls, 1)
		return usecase.NewListingUsecase(memory.NewListingRepository(), memory.NewBlobStore(""), logger.NewNop(), usecase.DefaultOptions()), nil
	}
	return Builders{KindMock: build, KindRemoteStore: build}
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("mock")
	require.NoError(t, err)
	assert.Equal(t, KindMock, k)

	k, err = ParseKind("remote-store")
	require.NoError(t, err)
	assert.Equal(t, KindRemoteStore, k)

	_, err = ParseKind("firebase")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestExistingBeforeInitialize(t *testing.T) {
	Reset()
	_, err := Existing()
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.Equal(t, Kind(""), Active())
}

func TestInitializeIsIdempotent(t *testing.T) {
	Reset()
	t.Cleanup(Reset)
	var calls int32
	builders := countingBuilders(&calls)

	first, err := Initialize(context.Background(), KindMock, builders)
	require.NoError(t, err)
	second, err := Initialize(context.Background(), KindRemoteStore, builders)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), calls)
	assert.Equal(t, KindMock, Active())

	existing, err := Existing()
	require.NoError(t, err)
	assert.Same(t, first, existing)
}

func TestInitializeConcurrent(t *testing.T) {
	Reset()
	t.Cleanup(Reset)
	var calls int32
	builders := countingBuilders(&calls)

	var wg sync.WaitGroup
	results := make([]*usecase.ListingUsecase, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			uc, err := Initialize(context.Background(), KindMock, builders)
			assert.NoError(t, err)
			results[i] = uc
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls)
	for _, uc := range results {
		assert.Same(t, results[0], uc)
	}
}

func TestInitializeFailureCanBeRetried(t *testing.T) {
	Reset()
	t.Cleanup(Reset)
	boom := errors.New("mongo unreachable")
	failing := Builders{KindRemoteStore: func(context.Context) (*usecase.ListingUsecase, error) { return nil, boom }}

	_, err := Initialize(context.Background(), KindRemoteStore, failing)
	assert.ErrorIs(t, err, boom)
	_, err = Existing()
	assert.ErrorIs(t, err, ErrNotInitialized)

	var calls int32
	uc, err := Initialize(context.Background(), KindMock, countingBuilders(&calls))
	require.NoError(t, err)
	assert.NotNil(t, uc)
}

func TestInitializeUnknownKind(t *testing.T) {
	Reset()
	t.Cleanup(Reset)
	_, err := Initialize(context.Background(), "firebase", Builders{})
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestResetClears(t *testing.T) {
	Reset()
	var calls int32
	_, err := Initialize(context.Background(), KindMock, countingBuilders(&calls))
	require.NoError(t, err)

	Reset()
	_, err = Existing()
	assert.ErrorIs(t, err, ErrNotInitialized)
}
