// Package query filters, sorts and paginates listings independently of where
// they are stored. Backends only supply the candidate set.
package query

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/Dhee091/Housing-Management-sub000/internal/listing/domain"
)

// CandidateFetcher returns the active listings a store considers possible
// matches for q. It may return a superset; it must not drop matches. The
// returned slice is owned by the caller and may be reordered.
type CandidateFetcher func(ctx context.Context, q domain.CandidateQuery) ([]*domain.Listing, error)

type Options struct {
	DefaultPageSize int
	MaxPageSize     int
}

func DefaultOptions() Options {
	return Options{DefaultPageSize: 20, MaxPageSize: 100}
}

// Run answers a listing query over the candidates returned by fetch.
func Run(ctx context.Context, fetch CandidateFetcher, f domain.ListingFilters, opts Options) (domain.Page[*domain.Listing], error) {
	if err := normalize(&f, opts); err != nil {
		return domain.Page[*domain.Listing]{}, err
	}
	c := criteria{
		term:     strings.ToLower(strings.TrimSpace(f.SearchTerm)),
		fields:   allSearchFields,
		state:    f.State,
		city:     f.City,
		minRent:  f.MinRent,
		maxRent:  f.MaxRent,
		minUnits: f.MinUnitsAvailable,
		role:     f.Role,
		status:   f.Status,
	}
	return run(ctx, fetch, c, f)
}

// RunByUser answers a query restricted to listings whose lister is userID.
// Only the search term (over title and description), rent bounds, status,
// sort and pagination apply; location, role and unit filters are ignored.
func RunByUser(ctx context.Context, fetch CandidateFetcher, userID string, f domain.ListingFilters, opts Options) (domain.Page[*domain.Listing], error) {
	if strings.TrimSpace(userID) == "" {
		return domain.Page[*domain.Listing]{}, domain.NewValidationError("userId", "is required")
	}
	if err := normalize(&f, opts); err != nil {
		return domain.Page[*domain.Listing]{}, err
	}
	c := criteria{
		ownerID: userID,
		term:    strings.ToLower(strings.TrimSpace(f.SearchTerm)),
		fields:  ownerSearchFields,
		minRent: f.MinRent,
		maxRent: f.MaxRent,
		status:  f.Status,
	}
	return run(ctx, fetch, c, f)
}

func run(ctx context.Context, fetch CandidateFetcher, c criteria, f domain.ListingFilters) (domain.Page[*domain.Listing], error) {
	candidates, err := fetch(ctx, c.candidateQuery())
	if err != nil {
		return domain.Page[*domain.Listing]{}, err
	}

	// Fix the pre-sort order so equal sort keys come out the same on every backend.
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	matched := make([]*domain.Listing, 0, len(candidates))
	for _, l := range candidates {
		if l != nil && c.match(l) {
			matched = append(matched, l)
		}
	}

	less := lessFunc(f.SortBy)
	desc := f.SortOrder == domain.SortDesc
	sort.SliceStable(matched, func(i, j int) bool {
		if desc {
			return less(matched[j], matched[i])
		}
		return less(matched[i], matched[j])
	})

	return paginate(matched, f.Page, f.PageSize), nil
}

func normalize(f *domain.ListingFilters, opts Options) error {
	if opts.MaxPageSize < 1 {
		opts.MaxPageSize = DefaultOptions().MaxPageSize
	}
	if opts.DefaultPageSize < 1 || opts.DefaultPageSize > opts.MaxPageSize {
		opts.DefaultPageSize = min(DefaultOptions().DefaultPageSize, opts.MaxPageSize)
	}

	if f.SortBy == "" {
		f.SortBy = domain.SortByCreatedAt
	}
	if !f.SortBy.IsValid() {
		return domain.NewValidationError("sortBy", "must be one of rent, createdAt, updatedAt, unitsAvailable")
	}
	if f.SortOrder == "" {
		f.SortOrder = domain.SortDesc
	}
	if !f.SortOrder.IsValid() {
		return domain.NewValidationError("sortOrder", "must be asc or desc")
	}
	if f.Page < 1 {
		f.Page = 1
	}
	switch {
	case f.PageSize <= 0:
		f.PageSize = opts.DefaultPageSize
	case f.PageSize > opts.MaxPageSize:
		f.PageSize = opts.MaxPageSize
	}
	return nil
}

func lessFunc(field domain.SortField) func(a, b *domain.Listing) bool {
	switch field {
	case domain.SortByRent:
		return func(a, b *domain.Listing) bool { return a.Rent < b.Rent }
	case domain.SortByUpdatedAt:
		return func(a, b *domain.Listing) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
	case domain.SortByUnitsAvailable:
		return func(a, b *domain.Listing) bool { return a.UnitsAvailable < b.UnitsAvailable }
	default:
		return func(a, b *domain.Listing) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}
}

func paginate(items []*domain.Listing, page, size int) domain.Page[*domain.Listing] {
	total := len(items)
	totalPages := (total + size - 1) / size

	// Compare before multiplying so a huge page cannot overflow.
	start := total
	if page-1 < totalPages {
		start = (page - 1) * size
	}
	end := min(start+size, total)

	p := domain.Page[*domain.Listing]{
		Items:      items[start:end:end],
		Total:      total,
		Page:       page,
		PageSize:   size,
		TotalPages: totalPages,
		HasMore:    page < totalPages,
	}
	if p.HasMore {
		next := strconv.Itoa(page + 1)
		p.NextCursor = &next
	}
	return p
}
