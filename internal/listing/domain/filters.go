package domain

type SortField string

const (
	SortByRent           SortField = "rent"
	SortByCreatedAt      SortField = "createdAt"
	SortByUpdatedAt      SortField = "updatedAt"
	SortByUnitsAvailable SortField = "unitsAvailable"
)

func (f SortField) IsValid() bool {
	switch f {
	case SortByRent, SortByCreatedAt, SortByUpdatedAt, SortByUnitsAvailable:
		return true
	}
	return false
}

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

func (o SortOrder) IsValid() bool {
	return o == SortAsc || o == SortDesc
}

// ListingFilters is the whole query vocabulary for listings. Zero values mean
// "no constraint"; rent and unit bounds are pointers so 0 is a usable bound.
type ListingFilters struct {
	SearchTerm        string
	State             string
	City              string
	MinRent           *int64
	MaxRent           *int64
	MinUnitsAvailable *int
	Role              Role
	Status            ListingStatus
	SortBy            SortField
	SortOrder         SortOrder
	Page              int
	PageSize          int
}

// Page is one slice of a filtered, sorted result set.
type Page[T any] struct {
	Items      []T     `json:"items"`
	Total      int     `json:"total"`
	Page       int     `json:"page"`
	PageSize   int     `json:"pageSize"`
	TotalPages int     `json:"totalPages"`
	HasMore    bool    `json:"hasMore"`
	NextCursor *string `json:"nextCursor"`
}

// CandidateQuery is the structured part of a listing query that a store may
// evaluate natively. Stores may ignore any field; results are always
// re-filtered in process. Inactive listings are never candidates.
type CandidateQuery struct {
	OwnerID           string
	State             string
	City              string
	MinRent           *int64
	MaxRent           *int64
	MinUnitsAvailable *int
	Role              Role
	Status            ListingStatus
}
