package usecase

import (
	"context"
	"fmt"

	"github.com/Dhee091/Housing-Management-sub000/internal/listing/domain"
	"go.uber.org/zap"
)

// resolveImages turns image inputs into stored image records. New files are
// uploaded one at a time; if one fails, every file uploaded by this call is
// deleted before the error is returned. The ids of uploaded blobs are
// returned so the caller can roll them back if persisting the listing fails.
func (uc *ListingUsecase) resolveImages(ctx context.Context, listingID string, inputs []domain.ImageInput, current []domain.ListingImage) ([]domain.ListingImage, []string, error) {
	known := make(map[string]domain.ListingImage, len(current))
	for _, img := range current {
		known[img.ID] = img
	}

	out := make([]domain.ListingImage, 0, len(inputs))
	var uploaded []string
	for i, in := range inputs {
		switch img := in.(type) {
		case *domain.NewImageFile:
			in = *img
		case *domain.ExistingImage:
			in = *img
		}

		switch img := in.(type) {
		case domain.NewImageFile:
			imageID := uc.newID()
			url, err := uc.blobs.Put(ctx, listingID, imageID, img.ContentType, img.Data)
			if err != nil {
				uc.logger.Error("ListingUsecase.resolveImages: upload failed, rolling back",
					zap.String("listing_id", listingID),
					zap.Int("image_index", i),
					zap.Int("already_uploaded", len(uploaded)),
					zap.Error(err))
				uc.deleteBlobs(ctx, listingID, uploaded)
				uc.metrics.ImageUploadRolledBack()
				return nil, nil, domain.NewStorageError(fmt.Sprintf("upload image %d of %d", i+1, len(inputs)), err)
			}
			uploaded = append(uploaded, imageID)
			out = append(out, domain.ListingImage{ID: imageID, URL: url, AltText: img.AltText, Order: i})

		case domain.ExistingImage:
			rec, ok := known[img.ID]
			if !ok {
				rec = domain.ListingImage{ID: img.ID}
				if rec.ID == "" {
					rec.ID = uc.newID()
				}
			}
			if img.URL != "" {
				rec.URL = img.URL
			}
			if img.AltText != "" {
				rec.AltText = img.AltText
			}
			if img.ThumbnailURL != "" {
				rec.ThumbnailURL = img.ThumbnailURL
			}
			rec.Order = i
			out = append(out, rec)

		default:
			uc.deleteBlobs(ctx, listingID, uploaded)
			return nil, nil, domain.NewValidationError(fmt.Sprintf("images[%d]", i), "is neither a new file nor an existing image")
		}
	}
	return out, uploaded, nil
}

// deleteBlobs removes image blobs, logging and ignoring failures.
func (uc *ListingUsecase) deleteBlobs(ctx context.Context, listingID string, imageIDs []string) {
	for _, id := range imageIDs {
		if err := uc.blobs.Delete(ctx, listingID, id); err != nil {
			uc.logger.Warn("ListingUsecase: best-effort image delete failed",
				zap.String("listing_id", listingID),
				zap.String("image_id", id),
				zap.Error(err))
		}
	}
}

// droppedImages lists ids present in before but not in after.
func droppedImages(before, after []domain.ListingImage) []string {
	keep := make(map[string]bool, len(after))
	for _, img := range after {
		keep[img.ID] = true
	}
	var out []string
	for _, img := range before {
		if !keep[img.ID] {
			out = append(out, img.ID)
		}
	}
	return out
}

func imageIDs(images []domain.ListingImage) []string {
	out := make([]string, 0, len(images))
	for _, img := range images {
		out = append(out, img.ID)
	}
	return out
}
