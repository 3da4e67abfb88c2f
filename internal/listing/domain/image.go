package domain

// ImageInput is either a file to upload or a reference to an image that is
// already stored.
type ImageInput interface {
	imageInput()
}

type NewImageFile struct {
	Filename    string
	ContentType string
	Data        []byte
	AltText     string
}

type ExistingImage struct {
	ID           string
	URL          string
	AltText      string
	ThumbnailURL string
}

func (NewImageFile) imageInput()  {}
func (ExistingImage) imageInput() {}
