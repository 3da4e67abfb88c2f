package rest

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/Dhee091/Housing-Management-sub000/internal/listing/domain"
)

// parseFilters reads listing filters from the query string. Unknown sort
// fields and orders are left for the query engine to reject.
func parseFilters(q url.Values) (domain.ListingFilters, error) {
	f := domain.ListingFilters{
		SearchTerm: strings.TrimSpace(q.Get("q")),
		State:      strings.TrimSpace(q.Get("state")),
		City:       strings.TrimSpace(q.Get("city")),
		Role:       domain.Role(q.Get("role")),
		Status:     domain.ListingStatus(q.Get("status")),
		SortBy:     domain.SortField(q.Get("sortBy")),
		SortOrder:  domain.SortOrder(strings.ToLower(q.Get("sortOrder"))),
	}

	var err error
	if f.MinRent, err = optionalInt64(q, "minRent"); err != nil {
		return f, err
	}
	if f.MaxRent, err = optionalInt64(q, "maxRent"); err != nil {
		return f, err
	}
	units, err := optionalInt64(q, "minUnitsAvailable")
	if err != nil {
		return f, err
	}
	if units != nil {
		n := int(*units)
		f.MinUnitsAvailable = &n
	}
	if f.Page, err = optionalInt(q, "page"); err != nil {
		return f, err
	}
	if f.PageSize, err = optionalInt(q, "pageSize"); err != nil {
		return f, err
	}
	return f, nil
}

func optionalInt64(q url.Values, key string) (*int64, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, domain.NewValidationError(key, fmt.Sprintf("must be an integer, got %q", raw))
	}
	return &v, nil
}

func optionalInt(q url.Values, key string) (int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(key, fmt.Sprintf("must be an integer, got %q", raw))
	}
	return v, nil
}
