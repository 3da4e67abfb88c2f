package mongodb

import (
	"time"

	"github.com/Dhee091/Housing-Management-sub000/internal/identity"
	"github.com/Dhee091/Housing-Management-sub000/internal/listing/domain"
)

// Listing ids are generated by the service, so _id holds the string id
// rather than an ObjectID.
type listingDocument struct {
	ID             string               `bson:"_id"`
	Title          string               `bson:"title"`
	Description    string               `bson:"description"`
	Rent           int64                `bson:"rent"`
	Location       locationDocument     `bson:"location"`
	Bedrooms       int                  `bson:"bedrooms"`
	Bathrooms      int                  `bson:"bathrooms"`
	UnitsAvailable int                  `bson:"units_available"`
	Amenities      []string             `bson:"amenities"`
	Images         []imageDocument      `bson:"images"`
	ListedBy       listerDocument       `bson:"listed_by"`
	CreatedAt      time.Time            `bson:"created_at"`
	UpdatedAt      time.Time            `bson:"updated_at"`
	IsActive       bool                 `bson:"is_active"`
	Status         domain.ListingStatus `bson:"status"`
}

type locationDocument struct {
	State   string       `bson:"state"`
	City    string       `bson:"city"`
	Address string       `bson:"address"`
	Geo     *geoDocument `bson:"geo,omitempty"`
}

type geoDocument struct {
	Lat float64 `bson:"lat"`
	Lng float64 `bson:"lng"`
}

type imageDocument struct {
	ID           string `bson:"id"`
	URL          string `bson:"url"`
	AltText      string `bson:"alt_text,omitempty"`
	Order        int    `bson:"order"`
	ThumbnailURL string `bson:"thumbnail_url,omitempty"`
}

type listerDocument struct {
	ID      string      `bson:"id"`
	Name    string      `bson:"name"`
	Role    domain.Role `bson:"role"`
	Phone   string      `bson:"phone,omitempty"`
	Email   string      `bson:"email,omitempty"`
	Company string      `bson:"company,omitempty"`
}

type userDocument struct {
	ID           string      `bson:"_id"`
	Email        string      `bson:"email"`
	PasswordHash string      `bson:"password_hash"`
	Name         string      `bson:"name"`
	Phone        string      `bson:"phone,omitempty"`
	Role         domain.Role `bson:"role"`
	Company      string      `bson:"company,omitempty"`
	IsActive     bool        `bson:"is_active"`
	CreatedAt    time.Time   `bson:"created_at"`
	UpdatedAt    time.Time   `bson:"updated_at"`
}

func fromDomainListing(l *domain.Listing) *listingDocument {
	doc := &listingDocument{
		ID:          l.ID,
		Title:       l.Title,
		Description: l.Description,
		Rent:        l.Rent,
		Location: locationDocument{
			State:   l.Location.State,
			City:    l.Location.City,
			Address: l.Location.Address,
		},
		Bedrooms:       l.Bedrooms,
		Bathrooms:      l.Bathrooms,
		UnitsAvailable: l.UnitsAvailable,
		Amenities:      append([]string{}, l.Amenities...),
		Images:         make([]imageDocument, 0, len(l.Images)),
		ListedBy: listerDocument{
			ID:      l.ListedBy.ID,
			Name:    l.ListedBy.Name,
			Role:    l.ListedBy.Role,
			Phone:   l.ListedBy.Phone,
			Email:   l.ListedBy.Email,
			Company: l.ListedBy.Company,
		},
		CreatedAt: l.CreatedAt.UTC(),
		UpdatedAt: l.UpdatedAt.UTC(),
		IsActive:  l.IsActive,
		Status:    l.Status,
	}
	if g := l.Location.Geo; g != nil {
		doc.Location.Geo = &geoDocument{Lat: g.Lat, Lng: g.Lng}
	}
	for _, img := range l.Images {
		doc.Images = append(doc.Images, imageDocument{
			ID:           img.ID,
			URL:          img.URL,
			AltText:      img.AltText,
			Order:        img.Order,
			ThumbnailURL: img.ThumbnailURL,
		})
	}
	return doc
}

func (d *listingDocument) toDomainListing() *domain.Listing {
	l := &domain.Listing{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Rent:        d.Rent,
		Location: domain.Location{
			State:   d.Location.State,
			City:    d.Location.City,
			Address: d.Location.Address,
		},
		Bedrooms:       d.Bedrooms,
		Bathrooms:      d.Bathrooms,
		UnitsAvailable: d.UnitsAvailable,
		Amenities:      append([]string{}, d.Amenities...),
		Images:         make([]domain.ListingImage, 0, len(d.Images)),
		ListedBy: domain.Lister{
			ID:      d.ListedBy.ID,
			Name:    d.ListedBy.Name,
			Role:    d.ListedBy.Role,
			Phone:   d.ListedBy.Phone,
			Email:   d.ListedBy.Email,
			Company: d.ListedBy.Company,
		},
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
		IsActive:  d.IsActive,
		Status:    d.Status,
	}
	if g := d.Location.Geo; g != nil {
		l.Location.Geo = &domain.GeoPoint{Lat: g.Lat, Lng: g.Lng}
	}
	for _, img := range d.Images {
		l.Images = append(l.Images, domain.ListingImage{
			ID:           img.ID,
			URL:          img.URL,
			AltText:      img.AltText,
			Order:        img.Order,
			ThumbnailURL: img.ThumbnailURL,
		})
	}
	return l
}

func fromDomainUser(u *identity.User) *userDocument {
	return &userDocument{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Name:         u.Name,
		Phone:        u.Phone,
		Role:         u.Role,
		Company:      u.Company,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt.UTC(),
		UpdatedAt:    u.UpdatedAt.UTC(),
	}
}

func (d *userDocument) toDomainUser() *identity.User {
	return &identity.User{
		ID:           d.ID,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Name:         d.Name,
		Phone:        d.Phone,
		Role:         d.Role,
		Company:      d.Company,
		IsActive:     d.IsActive,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}
