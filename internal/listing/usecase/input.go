package usecase

import "github.com/Dhee091/Housing-Management-sub000/internal/listing/domain"

// CreateListingInput is what a caller may supply when creating a listing.
// The lister's id and role always come from the acting principal.
type CreateListingInput struct {
	Title          string
	Description    string
	Rent           int64
	Location       domain.Location
	Bedrooms       int
	Bathrooms      int
	UnitsAvailable int
	Amenities      []string
	Images         []domain.ImageInput

	ListerName    string
	ListerPhone   string
	ListerEmail   string
	ListerCompany string
}

// ListingPatch is a partial update. Nil fields are left unchanged. Images,
// when set, replace the whole image list. AppendImages are uploaded after
// Images, or after the listing's current images when Images is nil.
type ListingPatch struct {
	Title          *string
	Description    *string
	Rent           *int64
	Location       *domain.Location
	Bedrooms       *int
	Bathrooms      *int
	UnitsAvailable *int
	Amenities      *[]string
	Images         *[]domain.ImageInput
	AppendImages   []domain.NewImageFile
	Status         *domain.ListingStatus

	ListerName    *string
	ListerPhone   *string
	ListerEmail   *string
	ListerCompany *string
}

// imageList is the full image list the patch asks for, given the listing's
// current images, or nil when images are untouched.
func (p ListingPatch) imageList(current []domain.ListingImage) *[]domain.ImageInput {
	if p.Images == nil && len(p.AppendImages) == 0 {
		return nil
	}
	var out []domain.ImageInput
	if p.Images != nil {
		out = append(out, *p.Images...)
	} else {
		for _, img := range current {
			out = append(out, domain.ExistingImage{ID: img.ID})
		}
	}
	for _, f := range p.AppendImages {
		out = append(out, f)
	}
	return &out
}
