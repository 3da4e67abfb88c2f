package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Dhee091/Housing-Management-sub000/internal/adapter/repository/memory"
	"github.com/Dhee091/Housing-Management-sub000/internal/listing/domain"
	"github.com/Dhee091/Housing-Management-sub000/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockEventPublisher struct{ mock.Mock }

func (m *MockEventPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) ListingCreated(ctx context.Context, listing *domain.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}

// flakyBlobStore wraps the memory store and fails the n-th Put (1-based).
type flakyBlobStore struct {
	*memory.BlobStore
	failOn  int
	puts    int
	deletes []string
}

func (s *flakyBlobStore) Put(ctx context.Context, listingID, imageID, contentType string, data []byte) (string, error) {
	s.puts++
	if s.puts == s.failOn {
		return "", errors.New("quota exceeded")
	}
	return s.BlobStore.Put(ctx, listingID, imageID, contentType, data)
}

func (s *flakyBlobStore) Delete(ctx context.Context, listingID, imageID string) error {
	s.deletes = append(s.deletes, imageID)
	return s.BlobStore.Delete(ctx, listingID, imageID)
}

// failingRepo lets Create and Update fail on demand.
type failingRepo struct {
	*memory.ListingRepository
	createErr error
	updateErr error
}

func (r *failingRepo) Create(ctx context.Context, l *domain.Listing) error {
	if r.createErr != nil {
		return r.createErr
	}
	return r.ListingRepository.Create(ctx, l)
}

func (r *failingRepo) Update(ctx context.Context, l *domain.Listing) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	return r.ListingRepository.Update(ctx, l)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

var (
	owner    = domain.Principal{ID: "owner-1", Role: domain.RoleOwner, Name: "Ada Owner", Email: "ada@example.com"}
	agent    = domain.Principal{ID: "agent-1", Role: domain.RoleAgent, Name: "Bola Agent", Email: "bola@example.com"}
	admin    = domain.Principal{ID: "admin-1", Role: domain.RoleAdmin, Name: "Root"}
	stranger = domain.Principal{ID: "intruder", Role: domain.RoleOwner, Name: "Eve"}
)

type fixture struct {
	uc    *ListingUsecase
	repo  *memory.ListingRepository
	blobs *flakyBlobStore
	clock *fakeClock
}

func newFixture(t *testing.T, opts Options, extra ...Option) *fixture {
	t.Helper()
	f := &fixture{
		repo:  memory.NewListingRepository(),
		blobs: &flakyBlobStore{BlobStore: memory.NewBlobStore("")},
		clock: &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
	}
	options := append([]Option{WithClock(f.clock.Now)}, extra...)
	f.uc = NewListingUsecase(f.repo, f.blobs, logger.NewNop(), opts, options...)
	return f
}

func validInput() CreateListingInput {
	return CreateListingInput{
		Title:          "2 bed flat in Yaba",
		Description:    "Close to the university",
		Rent:           1500000,
		Location:       domain.Location{State: "Lagos", City: "Yaba", Address: "12 Herbert Macaulay Way"},
		Bedrooms:       2,
		Bathrooms:      2,
		UnitsAvailable: 1,
		Amenities:      []string{"water", " Water ", "", "generator"},
	}
}

func png(name string) domain.NewImageFile {
	return domain.NewImageFile{Filename: name, ContentType: "image/png", Data: []byte("png-" + name)}
}

func TestCreateListing(t *testing.T) {
	f := newFixture(t, DefaultOptions())

	got, err := f.uc.CreateListing(context.Background(), validInput(), owner)
	require.NoError(t, err)

	assert.NotEmpty(t, got.ID)
	assert.True(t, got.IsActive)
	assert.Equal(t, domain.StatusAvailable, got.Status)
	assert.Equal(t, got.CreatedAt, got.UpdatedAt)
	assert.Equal(t, []string{"water", "generator"}, got.Amenities)
	assert.Equal(t, domain.Lister{ID: owner.ID, Role: owner.Role, Name: owner.Name, Email: owner.Email}, got.ListedBy)

	stored, err := f.uc.GetListingByID(context.Background(), got.ID)
	require.NoError(t, err)
	assert.Equal(t, got, stored)
}

func TestCreateListingAttributesToPrincipal(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	in := validInput()
	in.ListerName = "Spoofed Name"
	in.ListerCompany = "Acme Realty"

	got, err := f.uc.CreateListing(context.Background(), in, owner)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, got.ListedBy.ID)
	assert.Equal(t, owner.Role, got.ListedBy.Role)
	assert.Equal(t, "Spoofed Name", got.ListedBy.Name, "display fields come from input")
	assert.Empty(t, got.ListedBy.Company, "company is kept for agents only")

	got, err = f.uc.CreateListing(context.Background(), in, agent)
	require.NoError(t, err)
	assert.Equal(t, agent.ID, got.ListedBy.ID)
	assert.Equal(t, domain.RoleAgent, got.ListedBy.Role)
	assert.Equal(t, "Acme Realty", got.ListedBy.Company)
}

func TestCreateListingRequiresListerPrincipal(t *testing.T) {
	f := newFixture(t, DefaultOptions())

	_, err := f.uc.CreateListing(context.Background(), validInput(), domain.Principal{})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = f.uc.CreateListing(context.Background(), validInput(), admin)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCreateListingValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateListingInput)
		field  string
	}{
		{name: "negative rent", mutate: func(in *CreateListingInput) { in.Rent = -5 }, field: "rent"},
		{name: "blank title", mutate: func(in *CreateListingInput) { in.Title = "   " }, field: "title"},
		{name: "negative bedrooms", mutate: func(in *CreateListingInput) { in.Bedrooms = -1 }, field: "bedrooms"},
		{name: "negative bathrooms", mutate: func(in *CreateListingInput) { in.Bathrooms = -1 }, field: "bathrooms"},
		{name: "negative units", mutate: func(in *CreateListingInput) { in.UnitsAvailable = -1 }, field: "unitsAvailable"},
		{name: "bad latitude", mutate: func(in *CreateListingInput) { in.Location.Geo = &domain.GeoPoint{Lat: 91} }, field: "location.geo.lat"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			strict := newFixture(t, DefaultOptions())
			_, err := strict.uc.CreateListing(context.Background(), in, owner)
			require.ErrorIs(t, err, domain.ErrValidation)
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)

			lenientOpts := DefaultOptions()
			lenientOpts.StrictValidation = false
			lenient := newFixture(t, lenientOpts)
			_, err = lenient.uc.CreateListing(context.Background(), in, owner)
			assert.NoError(t, err, "lenient mode accepts what the UI is trusted to check")
		})
	}
}

func TestCreateListingUploadsImagesInOrder(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	in := validInput()
	in.Images = []domain.ImageInput{
		png("front"),
		domain.ExistingImage{URL: "https://cdn.example.com/plan.png", AltText: "floor plan"},
		&domain.NewImageFile{Filename: "back", Data: []byte("x"), AltText: "back yard"},
	}

	got, err := f.uc.CreateListing(context.Background(), in, owner)
	require.NoError(t, err)
	require.Len(t, got.Images, 3)
	for i, img := range got.Images {
		assert.Equal(t, i, img.Order)
		assert.NotEmpty(t, img.ID)
	}
	assert.Equal(t, f.blobs.URL(got.ID, got.Images[0].ID), got.Images[0].URL)
	assert.Equal(t, "https://cdn.example.com/plan.png", got.Images[1].URL)
	assert.Equal(t, "back yard", got.Images[2].AltText)
	assert.Equal(t, 2, f.blobs.Len())
}

func TestCreateListingRollsBackImagesOnUploadFailure(t *testing.T) {
	m := &MockEventPublisher{}
	f := newFixture(t, DefaultOptions(), WithEventPublisher(m))
	f.blobs.failOn = 3
	in := validInput()
	in.Images = []domain.ImageInput{png("a"), png("b"), png("c"), png("d")}

	_, err := f.uc.CreateListing(context.Background(), in, owner)
	require.ErrorIs(t, err, domain.ErrStorage)
	assert.Contains(t, err.Error(), "upload image 3 of 4")

	assert.Equal(t, 0, f.blobs.Len(), "images 1 and 2 were removed")
	assert.Len(t, f.blobs.deletes, 2)
	page, err := f.uc.GetListings(context.Background(), domain.ListingFilters{})
	require.NoError(t, err)
	assert.Zero(t, page.Total, "listing was not persisted")
	m.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateListingRollsBackImagesWhenStoreFails(t *testing.T) {
	repo := &failingRepo{ListingRepository: memory.NewListingRepository(), createErr: domain.NewDatabaseError("insert listing", errors.New("no primary"))}
	blobs := &flakyBlobStore{BlobStore: memory.NewBlobStore("")}
	uc := NewListingUsecase(repo, blobs, logger.NewNop(), DefaultOptions())
	in := validInput()
	in.Images = []domain.ImageInput{png("a"), png("b")}

	_, err := uc.CreateListing(context.Background(), in, owner)
	require.ErrorIs(t, err, domain.ErrDatabase)
	assert.Equal(t, 0, blobs.Len())
}

func TestCreateListingRejectsEmptyImage(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	in := validInput()
	in.Images = []domain.ImageInput{png("ok"), domain.NewImageFile{Filename: "empty"}}

	_, err := f.uc.CreateListing(context.Background(), in, owner)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Zero(t, f.blobs.puts, "nothing uploads when any input is invalid")
}

func TestCreateListingPublishesAndNotifies(t *testing.T) {
	pub := &MockEventPublisher{}
	pub.On("Publish", mock.Anything, SubjectListingCreated, mock.AnythingOfType("usecase.ListingEvent")).Return(errors.New("nats down"))
	n := &MockNotifier{}
	n.On("ListingCreated", mock.Anything, mock.AnythingOfType("*domain.Listing")).Return(errors.New("smtp down"))

	f := newFixture(t, DefaultOptions(), WithEventPublisher(pub), WithNotifier(n))
	got, err := f.uc.CreateListing(context.Background(), validInput(), owner)
	require.NoError(t, err, "event and mail failures are best effort")

	pub.AssertExpectations(t)
	n.AssertExpectations(t)
	ev := pub.Calls[0].Arguments.Get(2).(ListingEvent)
	assert.Equal(t, got.ID, ev.ListingID)
	assert.Equal(t, owner.ID, ev.ActorID)
}

func TestGetListingByID(t *testing.T) {
	f := newFixture(t, DefaultOptions())

	_, err := f.uc.GetListingByID(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.uc.GetListingByID(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUpdateListingKeepsIdentityFields(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	created, err := f.uc.CreateListing(context.Background(), validInput(), owner)
	require.NoError(t, err)

	title := "Renovated"
	rent := int64(1800000)
	status := domain.StatusPending
	patches := []ListingPatch{
		{Title: &title},
		{Rent: &rent, Status: &status},
		{Amenities: &[]string{"pool"}},
		{ListerName: ptr("New Name"), ListerCompany: ptr("ignored for owners")},
	}
	var last *domain.Listing
	for _, p := range patches {
		last, err = f.uc.UpdateListing(context.Background(), created.ID, p, owner)
		require.NoError(t, err)
		assert.Equal(t, created.ID, last.ID)
		assert.Equal(t, created.CreatedAt, last.CreatedAt)
		assert.Equal(t, owner.ID, last.ListedBy.ID)
		assert.Equal(t, owner.Role, last.ListedBy.Role)
		assert.True(t, last.UpdatedAt.After(created.UpdatedAt))
	}
	assert.Equal(t, "Renovated", last.Title)
	assert.Equal(t, rent, last.Rent)
	assert.Equal(t, domain.StatusPending, last.Status)
	assert.Equal(t, []string{"pool"}, last.Amenities)
	assert.Equal(t, "New Name", last.ListedBy.Name)
	assert.Empty(t, last.ListedBy.Company)
	assert.Equal(t, created.Description, last.Description, "absent fields are unchanged")
}

func TestUpdateListingUpdatedAtNeverGoesBack(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	created, err := f.uc.CreateListing(context.Background(), validInput(), owner)
	require.NoError(t, err)

	f.clock.Set(created.UpdatedAt.Add(-time.Hour))
	got, err := f.uc.UpdateListing(context.Background(), created.ID, ListingPatch{Title: ptr("x")}, owner)
	require.NoError(t, err)
	assert.Equal(t, created.UpdatedAt, got.UpdatedAt)
}

func TestUpdateListingValidation(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	created, err := f.uc.CreateListing(context.Background(), validInput(), owner)
	require.NoError(t, err)

	bad := domain.ListingStatus("sold")
	_, err = f.uc.UpdateListing(context.Background(), created.ID, ListingPatch{Status: &bad}, owner)
	assert.ErrorIs(t, err, domain.ErrValidation)

	neg := -1
	_, err = f.uc.UpdateListing(context.Background(), created.ID, ListingPatch{UnitsAvailable: &neg}, owner)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestOwnershipGate(t *testing.T) {
	tests := []struct {
		name    string
		actor   domain.Principal
		wantErr error
	}{
		{name: "owner", actor: owner},
		{name: "admin", actor: admin},
		{name: "system", actor: domain.SystemPrincipal("cleanup")},
		{name: "other owner", actor: stranger, wantErr: domain.ErrForbidden},
		{name: "other agent", actor: agent, wantErr: domain.ErrForbidden},
		{name: "anonymous", actor: domain.Principal{Role: domain.RoleAdmin}, wantErr: domain.ErrUnauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, DefaultOptions())
			created, err := f.uc.CreateListing(context.Background(), validInput(), owner)
			require.NoError(t, err)

			_, err = f.uc.UpdateListing(context.Background(), created.ID, ListingPatch{Title: ptr("changed")}, tt.actor)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}

			err = f.uc.DeleteListing(context.Background(), created.ID, tt.actor)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				stored, _ := f.uc.GetListingByID(context.Background(), created.ID)
				assert.True(t, stored.IsActive)
				assert.Equal(t, created.Title, stored.Title)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestForbiddenCarriesAuditDetail(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	created, err := f.uc.CreateListing(context.Background(), validInput(), owner)
	require.NoError(t, err)

	err = f.uc.DeleteListing(context.Background(), created.ID, stranger)
	var fe *domain.ForbiddenError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, created.ID, fe.ListingID)
	assert.Equal(t, owner.ID, fe.OwnerID)
	assert.Equal(t, stranger.ID, fe.ActorID)
	assert.Equal(t, stranger.Role, fe.ActorRole)
}

func TestDeleteListingIsSoft(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	in := validInput()
	in.Images = []domain.ImageInput{png("a")}
	created, err := f.uc.CreateListing(context.Background(), in, owner)
	require.NoError(t, err)

	require.NoError(t, f.uc.DeleteListing(context.Background(), created.ID, owner))

	got, err := f.uc.GetListingByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.True(t, got.UpdatedAt.After(created.UpdatedAt))
	assert.Equal(t, 1, f.blobs.Len(), "mock backend keeps images")

	page, err := f.uc.GetListings(context.Background(), domain.ListingFilters{})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
	mine, err := f.uc.ListByUser(context.Background(), owner.ID, domain.ListingFilters{})
	require.NoError(t, err)
	assert.Zero(t, mine.Total)

	require.NoError(t, f.uc.DeleteListing(context.Background(), created.ID, owner), "deleting twice is harmless")
}

func TestDeleteListingPurgesImagesWhenConfigured(t *testing.T) {
	opts := DefaultOptions()
	opts.PurgeImagesOnDelete = true
	f := newFixture(t, opts)
	in := validInput()
	in.Images = []domain.ImageInput{png("a"), png("b")}
	created, err := f.uc.CreateListing(context.Background(), in, owner)
	require.NoError(t, err)

	require.NoError(t, f.uc.DeleteListing(context.Background(), created.ID, owner))
	assert.Equal(t, 0, f.blobs.Len())
}

func TestDeleteListingNotFound(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	err := f.uc.DeleteListing(context.Background(), "nonexistent-id", owner)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateListingReplacesImages(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	in := validInput()
	in.Images = []domain.ImageInput{png("a"), png("b")}
	created, err := f.uc.CreateListing(context.Background(), in, owner)
	require.NoError(t, err)
	keep := created.Images[1]

	got, err := f.uc.UpdateListing(context.Background(), created.ID, ListingPatch{
		Images: &[]domain.ImageInput{
			domain.ExistingImage{ID: keep.ID, AltText: "kept"},
			png("c"),
		},
	}, owner)
	require.NoError(t, err)

	require.Len(t, got.Images, 2)
	assert.Equal(t, keep.ID, got.Images[0].ID)
	assert.Equal(t, keep.URL, got.Images[0].URL)
	assert.Equal(t, "kept", got.Images[0].AltText)
	assert.Equal(t, 0, got.Images[0].Order)
	assert.Equal(t, 1, got.Images[1].Order)

	_, stillThere := f.blobs.Get(created.ID, created.Images[0].ID)
	assert.False(t, stillThere, "dropped image is deleted")
	assert.Equal(t, 2, f.blobs.Len())
}

func TestUpdateListingRollsBackNewImagesWhenStoreFails(t *testing.T) {
	repo := &failingRepo{ListingRepository: memory.NewListingRepository()}
	blobs := &flakyBlobStore{BlobStore: memory.NewBlobStore("")}
	uc := NewListingUsecase(repo, blobs, logger.NewNop(), DefaultOptions())
	in := validInput()
	in.Images = []domain.ImageInput{png("a")}
	created, err := uc.CreateListing(context.Background(), in, owner)
	require.NoError(t, err)

	repo.updateErr = domain.NewDatabaseError("update listing", errors.New("write conflict"))
	_, err = uc.UpdateListing(context.Background(), created.ID, ListingPatch{
		Images: &[]domain.ImageInput{png("b"), png("c")},
	}, owner)
	require.ErrorIs(t, err, domain.ErrDatabase)

	assert.Equal(t, 1, blobs.Len(), "only the original image remains")
	_, ok := blobs.Get(created.ID, created.Images[0].ID)
	assert.True(t, ok)
}

func TestUpdateListingRejectsUnknownImageReference(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	created, err := f.uc.CreateListing(context.Background(), validInput(), owner)
	require.NoError(t, err)

	_, err = f.uc.UpdateListing(context.Background(), created.ID, ListingPatch{
		Images: &[]domain.ImageInput{domain.ExistingImage{ID: "not-mine"}},
	}, owner)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// slowRepo widens the read-modify-write window so unserialized updates
// would overwrite each other.
type slowRepo struct {
	*memory.ListingRepository
}

func (r slowRepo) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	l, err := r.ListingRepository.FindByID(ctx, id)
	time.Sleep(5 * time.Millisecond)
	return l, err
}

func TestConcurrentUpdatesAreSerialized(t *testing.T) {
	repo := slowRepo{memory.NewListingRepository()}
	uc := NewListingUsecase(repo, memory.NewBlobStore(""), logger.NewNop(), DefaultOptions())
	created, err := uc.CreateListing(context.Background(), validInput(), owner)
	require.NoError(t, err)

	status := domain.StatusRented
	patches := []ListingPatch{
		{Title: ptr("t")},
		{Description: ptr("d")},
		{Rent: ptr(int64(7))},
		{Bedrooms: ptr(7)},
		{Bathrooms: ptr(7)},
		{UnitsAvailable: ptr(7)},
		{Amenities: &[]string{"lift"}},
		{Status: &status},
	}
	var wg sync.WaitGroup
	for _, p := range patches {
		wg.Add(1)
		go func(p ListingPatch) {
			defer wg.Done()
			_, err := uc.UpdateListing(context.Background(), created.ID, p, owner)
			assert.NoError(t, err)
		}(p)
	}
	wg.Wait()

	got, err := uc.GetListingByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "t", got.Title)
	assert.Equal(t, "d", got.Description)
	assert.Equal(t, int64(7), got.Rent)
	assert.Equal(t, 7, got.Bedrooms)
	assert.Equal(t, 7, got.Bathrooms)
	assert.Equal(t, 7, got.UnitsAvailable)
	assert.Equal(t, []string{"lift"}, got.Amenities)
	assert.Equal(t, domain.StatusRented, got.Status)
	assert.Empty(t, uc.locks.locks, "lock table is cleaned up")
}

func TestSearchAndListByUser(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	for i := 0; i < 3; i++ {
		in := validInput()
		in.Title = fmt.Sprintf("Owner flat %d", i)
		_, err := f.uc.CreateListing(context.Background(), in, owner)
		require.NoError(t, err)
	}
	in := validInput()
	in.Title = "Agent duplex"
	in.Location.City = "Lekki"
	_, err := f.uc.CreateListing(context.Background(), in, agent)
	require.NoError(t, err)

	found, err := f.uc.SearchListings(context.Background(), "DUPLEX", domain.ListingFilters{})
	require.NoError(t, err)
	require.Equal(t, 1, found.Total)
	assert.Equal(t, agent.ID, found.Items[0].ListedBy.ID)

	byCity, err := f.uc.SearchListings(context.Background(), "lekki", domain.ListingFilters{})
	require.NoError(t, err)
	assert.Equal(t, 1, byCity.Total)

	mine, err := f.uc.ListByUser(context.Background(), owner.ID, domain.ListingFilters{PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, mine.Total)
	assert.Equal(t, 2, mine.TotalPages)
	assert.Equal(t, "Owner flat 2", mine.Items[0].Title)

	_, err = f.uc.GetListings(context.Background(), domain.ListingFilters{SortBy: "title"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestMetricsAreRecorded(t *testing.T) {
	m := &countingMetrics{}
	f := newFixture(t, DefaultOptions(), WithMetrics(m))
	f.blobs.failOn = 1

	created, err := f.uc.CreateListing(context.Background(), validInput(), owner)
	require.NoError(t, err)
	_, err = f.uc.UpdateListing(context.Background(), created.ID, ListingPatch{Title: ptr("t")}, owner)
	require.NoError(t, err)
	require.NoError(t, f.uc.DeleteListing(context.Background(), created.ID, owner))
	in := validInput()
	in.Images = []domain.ImageInput{png("boom")}
	_, err = f.uc.CreateListing(context.Background(), in, owner)
	require.Error(t, err)

	assert.Equal(t, countingMetrics{created: 1, updated: 1, deleted: 1, rolledBack: 1}, *m)
}

type countingMetrics struct{ created, updated, deleted, rolledBack int }

func (m *countingMetrics) ListingCreated()        { m.created++ }
func (m *countingMetrics) ListingUpdated()        { m.updated++ }
func (m *countingMetrics) ListingDeleted()        { m.deleted++ }
func (m *countingMetrics) ImageUploadRolledBack() { m.rolledBack++ }

func ptr[T any](v T) *T { return &v }

func TestTimestampsKeepMillisecondPrecision(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	f.clock.Set(time.Date(2025, 1, 2, 3, 4, 5, 123456789, time.UTC))

	created, err := f.uc.CreateListing(context.Background(), validInput(), owner)
	require.NoError(t, err)
	want := time.Date(2025, 1, 2, 3, 4, 6, 123000000, time.UTC)
	assert.Equal(t, want, created.CreatedAt)
	assert.Equal(t, want, created.UpdatedAt)

	title := "Renamed"
	updated, err := f.uc.UpdateListing(context.Background(), created.ID, ListingPatch{Title: &title}, owner)
	require.NoError(t, err)
	assert.Zero(t, updated.UpdatedAt.Nanosecond()%int(time.Millisecond))
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
}

func TestUpdateAppendsImagesToCurrentList(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	in := validInput()
	in.Images = []domain.ImageInput{png("a"), png("b")}
	created, err := f.uc.CreateListing(context.Background(), in, owner)
	require.NoError(t, err)

	updated, err := f.uc.UpdateListing(context.Background(), created.ID,
		ListingPatch{AppendImages: []domain.NewImageFile{png("c")}}, owner)
	require.NoError(t, err)

	require.Len(t, updated.Images, 3)
	assert.Equal(t, created.Images[0].ID, updated.Images[0].ID)
	assert.Equal(t, created.Images[1].ID, updated.Images[1].ID)
	assert.Equal(t, 2, updated.Images[2].Order)
	assert.Empty(t, f.blobs.deletes)

	replaced, err := f.uc.UpdateListing(context.Background(), created.ID, ListingPatch{
		Images:       &[]domain.ImageInput{domain.ExistingImage{ID: created.Images[1].ID}},
		AppendImages: []domain.NewImageFile{png("d")},
	}, owner)
	require.NoError(t, err)
	require.Len(t, replaced.Images, 2)
	assert.Equal(t, created.Images[1].ID, replaced.Images[0].ID)
	assert.ElementsMatch(t, []string{created.Images[0].ID, updated.Images[2].ID}, f.blobs.deletes)
}

func TestConcurrentAppendsKeepEveryImage(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	in := validInput()
	in.Images = []domain.ImageInput{png("first")}
	created, err := f.uc.CreateListing(context.Background(), in, owner)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.uc.UpdateListing(context.Background(), created.ID,
				ListingPatch{AppendImages: []domain.NewImageFile{png(fmt.Sprintf("extra-%d", i))}}, owner)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := f.uc.GetListingByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Len(t, got.Images, 5)
	assert.Empty(t, f.blobs.deletes)
}
