package usecase

import (
	"fmt"
	"strings"

	"github.com/Dhee091/Housing-Management-sub000/internal/listing/domain"
)

func (uc *ListingUsecase) validateCreate(in CreateListingInput) error {
	if uc.opts.StrictValidation {
		if err := validateTitle(in.Title); err != nil {
			return err
		}
		if err := validateCounts(&in.Rent, &in.Bedrooms, &in.Bathrooms, &in.UnitsAvailable); err != nil {
			return err
		}
		if err := validateGeo(in.Location.Geo); err != nil {
			return err
		}
	}
	return uc.validateImages(in.Images, nil)
}

func (uc *ListingUsecase) validatePatch(p ListingPatch, current []domain.ListingImage) error {
	if p.Status != nil && !p.Status.IsValid() {
		return domain.NewValidationError("status", "must be one of available, pending, rented")
	}
	if uc.opts.StrictValidation {
		if p.Title != nil {
			if err := validateTitle(*p.Title); err != nil {
				return err
			}
		}
		if err := validateCounts(p.Rent, p.Bedrooms, p.Bathrooms, p.UnitsAvailable); err != nil {
			return err
		}
		if p.Location != nil {
			if err := validateGeo(p.Location.Geo); err != nil {
				return err
			}
		}
	}
	if p.Images != nil {
		return uc.validateImages(*p.Images, current)
	}
	return nil
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return domain.NewValidationError("title", "must not be empty")
	}
	return nil
}

func validateCounts(rent *int64, bedrooms, bathrooms, units *int) error {
	if rent != nil && *rent < 0 {
		return domain.NewValidationError("rent", "must not be negative")
	}
	counts := []struct {
		name string
		v    *int
	}{{"bedrooms", bedrooms}, {"bathrooms", bathrooms}, {"unitsAvailable", units}}
	for _, c := range counts {
		if c.v != nil && *c.v < 0 {
			return domain.NewValidationError(c.name, "must not be negative")
		}
	}
	return nil
}

func validateGeo(g *domain.GeoPoint) error {
	if g == nil {
		return nil
	}
	if g.Lat < -90 || g.Lat > 90 {
		return domain.NewValidationError("location.geo.lat", "must be between -90 and 90")
	}
	if g.Lng < -180 || g.Lng > 180 {
		return domain.NewValidationError("location.geo.lng", "must be between -180 and 180")
	}
	return nil
}

// validateImages rejects bad image inputs before anything is uploaded.
func (uc *ListingUsecase) validateImages(inputs []domain.ImageInput, current []domain.ListingImage) error {
	known := make(map[string]bool, len(current))
	for _, img := range current {
		known[img.ID] = true
	}
	for i, in := range inputs {
		field := fmt.Sprintf("images[%d]", i)
		switch img := in.(type) {
		case domain.NewImageFile:
			if err := uc.validateImageFile(field, img); err != nil {
				return err
			}
		case *domain.NewImageFile:
			if img == nil {
				return domain.NewValidationError(field, "is empty")
			}
			if err := uc.validateImageFile(field, *img); err != nil {
				return err
			}
		case domain.ExistingImage:
			if !known[img.ID] && img.URL == "" {
				return domain.NewValidationError(field, "references an unknown image without a url")
			}
		case *domain.ExistingImage:
			if img == nil || (!known[img.ID] && img.URL == "") {
				return domain.NewValidationError(field, "references an unknown image without a url")
			}
		default:
			return domain.NewValidationError(field, "is neither a new file nor an existing image")
		}
	}
	return nil
}

func (uc *ListingUsecase) validateImageFile(field string, f domain.NewImageFile) error {
	if len(f.Data) == 0 {
		return domain.NewValidationError(field, "has no content")
	}
	if uc.opts.MaxImageBytes > 0 && int64(len(f.Data)) > uc.opts.MaxImageBytes {
		return domain.NewValidationError(field, fmt.Sprintf("exceeds %d bytes", uc.opts.MaxImageBytes))
	}
	return nil
}

// normalizeAmenities trims labels and drops blanks and duplicates.
func normalizeAmenities(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, a := range in {
		a = strings.TrimSpace(a)
		key := strings.ToLower(a)
		if a == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, a)
	}
	return out
}
