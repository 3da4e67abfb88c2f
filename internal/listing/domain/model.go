package domain

import "time"

type ListingStatus string

const (
	StatusAvailable ListingStatus = "available"
	StatusPending   ListingStatus = "pending"
	StatusRented    ListingStatus = "rented"
)

func (s ListingStatus) IsValid() bool {
	switch s {
	case StatusAvailable, StatusPending, StatusRented:
		return true
	}
	return false
}

// Role is the role of an acting principal or of a lister.
// Listers are always agents or owners; admin and system only act.
type Role string

const (
	RoleAgent  Role = "agent"
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleSystem Role = "system"
)

// IsLister reports whether the role may appear as a listing's lister.
func (r Role) IsLister() bool {
	return r == RoleAgent || r == RoleOwner
}

type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Location struct {
	State   string    `json:"state"`
	City    string    `json:"city"`
	Address string    `json:"address"`
	Geo     *GeoPoint `json:"geo,omitempty"`
}

type ListingImage struct {
	ID           string `json:"id"`
	URL          string `json:"url"`
	AltText      string `json:"altText"`
	Order        int    `json:"order"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

// Lister is a copy of the user who created a listing, taken at creation time.
type Lister struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Role    Role   `json:"role"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Company string `json:"company,omitempty"`
}

type Listing struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Rent           int64          `json:"rent"`
	Location       Location       `json:"location"`
	Bedrooms       int            `json:"bedrooms"`
	Bathrooms      int            `json:"bathrooms"`
	UnitsAvailable int            `json:"unitsAvailable"`
	Amenities      []string       `json:"amenities"`
	Images         []ListingImage `json:"images"`
	ListedBy       Lister         `json:"listedBy"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	IsActive       bool           `json:"isActive"`
	Status         ListingStatus  `json:"status"`
}

// Clone returns a deep copy so callers cannot alias stored state.
func (l *Listing) Clone() *Listing {
	if l == nil {
		return nil
	}
	c := *l
	if l.Location.Geo != nil {
		geo := *l.Location.Geo
		c.Location.Geo = &geo
	}
	if l.Amenities != nil {
		c.Amenities = append([]string(nil), l.Amenities...)
	}
	if l.Images != nil {
		c.Images = append([]ListingImage(nil), l.Images...)
	}
	return &c
}
