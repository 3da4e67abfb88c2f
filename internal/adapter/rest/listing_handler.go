package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/Dhee091/Housing-Management-sub000/internal/listing/domain"
	"github.com/Dhee091/Housing-Management-sub000/internal/listing/usecase"
	"github.com/Dhee091/Housing-Management-sub000/internal/platform/logger"
	"github.com/go-chi/chi/v5"
)

// ListingService is the subset of the listing facade the HTTP layer calls.
type ListingService interface {
	CreateListing(ctx context.Context, in usecase.CreateListingInput, actor domain.Principal) (*domain.Listing, error)
	GetListingByID(ctx context.Context, id string) (*domain.Listing, error)
	UpdateListing(ctx context.Context, id string, patch usecase.ListingPatch, actor domain.Principal) (*domain.Listing, error)
	DeleteListing(ctx context.Context, id string, actor domain.Principal) error
	GetListings(ctx context.Context, filters domain.ListingFilters) (domain.Page[*domain.Listing], error)
	SearchListings(ctx context.Context, term string, filters domain.ListingFilters) (domain.Page[*domain.Listing], error)
	ListByUser(ctx context.Context, userID string, filters domain.ListingFilters) (domain.Page[*domain.Listing], error)
}

type ListingHandler struct {
	svc            ListingService
	logger         *logger.Logger
	maxUploadBytes int64
}

func NewListingHandler(svc ListingService, log *logger.Logger, maxUploadBytes int64) *ListingHandler {
	return &ListingHandler{svc: svc, logger: log.Named("ListingHandler"), maxUploadBytes: maxUploadBytes}
}

type imageRef struct {
	ID           string `json:"id"`
	URL          string `json:"url"`
	AltText      string `json:"altText"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

type createListingRequest struct {
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Rent           int64           `json:"rent"`
	Location       domain.Location `json:"location"`
	Bedrooms       int             `json:"bedrooms"`
	Bathrooms      int             `json:"bathrooms"`
	UnitsAvailable int             `json:"unitsAvailable"`
	Amenities      []string        `json:"amenities"`
	Images         []imageRef      `json:"images"`
	ListerName     string          `json:"listerName"`
	ListerPhone    string          `json:"listerPhone"`
	ListerEmail    string          `json:"listerEmail"`
	ListerCompany  string          `json:"listerCompany"`
}

type updateListingRequest struct {
	Title          *string               `json:"title"`
	Description    *string               `json:"description"`
	Rent           *int64                `json:"rent"`
	Location       *domain.Location      `json:"location"`
	Bedrooms       *int                  `json:"bedrooms"`
	Bathrooms      *int                  `json:"bathrooms"`
	UnitsAvailable *int                  `json:"unitsAvailable"`
	Amenities      *[]string             `json:"amenities"`
	Images         *[]imageRef           `json:"images"`
	Status         *domain.ListingStatus `json:"status"`
	ListerName     *string               `json:"listerName"`
	ListerPhone    *string               `json:"listerPhone"`
	ListerEmail    *string               `json:"listerEmail"`
	ListerCompany  *string               `json:"listerCompany"`
}

func toImageInputs(refs []imageRef) []domain.ImageInput {
	out := make([]domain.ImageInput, 0, len(refs))
	for _, ref := range refs {
		out = append(out, domain.ExistingImage{ID: ref.ID, URL: ref.URL, AltText: ref.AltText, ThumbnailURL: ref.ThumbnailURL})
	}
	return out
}

func uploadInputs(files []domain.NewImageFile) []domain.ImageInput {
	out := make([]domain.ImageInput, 0, len(files))
	for _, f := range files {
		out = append(out, f)
	}
	return out
}

// decodeBody fills dst from a JSON body, or from the "listing" field of a
// multipart form. Files under "images" are returned as new image inputs.
func (h *ListingHandler) decodeBody(w http.ResponseWriter, r *http.Request, dst any) ([]domain.NewImageFile, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(dst); err != nil {
			return nil, bodyError(err)
		}
		return nil, nil
	}

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		return nil, bodyError(err)
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	if raw := r.FormValue("listing"); raw != "" {
		dec := json.NewDecoder(strings.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(dst); err != nil {
			return nil, bodyError(err)
		}
	}

	files := r.MultipartForm.File["images"]
	out := make([]domain.NewImageFile, 0, len(files))
	for i, fh := range files {
		img, err := readImageFile(fh)
		if err != nil {
			return nil, domain.NewValidationError(fmt.Sprintf("images[%d]", i), err.Error())
		}
		out = append(out, img)
	}
	return out, nil
}

func readImageFile(fh *multipart.FileHeader) (domain.NewImageFile, error) {
	f, err := fh.Open()
	if err != nil {
		return domain.NewImageFile{}, fmt.Errorf("cannot be read: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return domain.NewImageFile{}, fmt.Errorf("cannot be read: %w", err)
	}
	contentType := fh.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return domain.NewImageFile{Filename: fh.Filename, ContentType: contentType, Data: data}, nil
}

type bodyTooLarge struct{ limit int64 }

func (e bodyTooLarge) Error() string { return fmt.Sprintf("request body exceeds %d bytes", e.limit) }

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return bodyTooLarge{limit: tooLarge.Limit}
	}
	return domain.NewValidationError("body", "is not valid: "+err.Error())
}

func (h *ListingHandler) rejectBody(w http.ResponseWriter, op string, err error) {
	var tooLarge bodyTooLarge
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: tooLarge.Error()})
		return
	}
	writeError(w, h.logger, op, err)
}

func (h *ListingHandler) HandleCreateListing(w http.ResponseWriter, r *http.Request) {
	actor, _ := PrincipalFrom(r.Context())

	var req createListingRequest
	files, err := h.decodeBody(w, r, &req)
	if err != nil {
		h.rejectBody(w, "HandleCreateListing", err)
		return
	}

	in := usecase.CreateListingInput{
		Title:          req.Title,
		Description:    req.Description,
		Rent:           req.Rent,
		Location:       req.Location,
		Bedrooms:       req.Bedrooms,
		Bathrooms:      req.Bathrooms,
		UnitsAvailable: req.UnitsAvailable,
		Amenities:      req.Amenities,
		Images:         append(toImageInputs(req.Images), uploadInputs(files)...),
		ListerName:     req.ListerName,
		ListerPhone:    req.ListerPhone,
		ListerEmail:    req.ListerEmail,
		ListerCompany:  req.ListerCompany,
	}
	listing, err := h.svc.CreateListing(r.Context(), in, actor)
	if err != nil {
		writeError(w, h.logger, "HandleCreateListing", err)
		return
	}
	writeJSON(w, http.StatusCreated, listing)
}

func (h *ListingHandler) HandleGetListing(w http.ResponseWriter, r *http.Request) {
	listing, err := h.svc.GetListingByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, "HandleGetListing", err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (h *ListingHandler) HandleUpdateListing(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	actor, _ := PrincipalFrom(r.Context())

	var req updateListingRequest
	files, err := h.decodeBody(w, r, &req)
	if err != nil {
		h.rejectBody(w, "HandleUpdateListing", err)
		return
	}

	patch := usecase.ListingPatch{
		Title:          req.Title,
		Description:    req.Description,
		Rent:           req.Rent,
		Location:       req.Location,
		Bedrooms:       req.Bedrooms,
		Bathrooms:      req.Bathrooms,
		UnitsAvailable: req.UnitsAvailable,
		Amenities:      req.Amenities,
		Status:         req.Status,
		ListerName:     req.ListerName,
		ListerPhone:    req.ListerPhone,
		ListerEmail:    req.ListerEmail,
		ListerCompany:  req.ListerCompany,
	}
	if req.Images != nil {
		images := toImageInputs(*req.Images)
		patch.Images = &images
	}
	patch.AppendImages = files

	listing, err := h.svc.UpdateListing(r.Context(), id, patch, actor)
	if err != nil {
		writeError(w, h.logger, "HandleUpdateListing", err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (h *ListingHandler) HandleDeleteListing(w http.ResponseWriter, r *http.Request) {
	actor, _ := PrincipalFrom(r.Context())
	if err := h.svc.DeleteListing(r.Context(), chi.URLParam(r, "id"), actor); err != nil {
		writeError(w, h.logger, "HandleDeleteListing", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ListingHandler) HandleGetListings(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilters(r.URL.Query())
	if err != nil {
		writeError(w, h.logger, "HandleGetListings", err)
		return
	}
	page, err := h.svc.GetListings(r.Context(), f)
	if err != nil {
		writeError(w, h.logger, "HandleGetListings", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *ListingHandler) HandleSearchListings(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilters(r.URL.Query())
	if err != nil {
		writeError(w, h.logger, "HandleSearchListings", err)
		return
	}
	page, err := h.svc.SearchListings(r.Context(), f.SearchTerm, f)
	if err != nil {
		writeError(w, h.logger, "HandleSearchListings", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *ListingHandler) HandleListByUser(w http.ResponseWriter, r *http.Request) {
	h.listByUser(w, r, chi.URLParam(r, "userID"))
}

func (h *ListingHandler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	actor, _ := PrincipalFrom(r.Context())
	h.listByUser(w, r, actor.ID)
}

func (h *ListingHandler) listByUser(w http.ResponseWriter, r *http.Request, userID string) {
	f, err := parseFilters(r.URL.Query())
	if err != nil {
		writeError(w, h.logger, "HandleListByUser", err)
		return
	}
	page, err := h.svc.ListByUser(r.Context(), userID, f)
	if err != nil {
		writeError(w, h.logger, "HandleListByUser", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}
