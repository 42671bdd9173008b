// Package images handles uploaded cover and avatar images: format
// validation, blurhash placeholders and filesystem storage.
package images

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder

	"github.com/google/uuid"

	domainerrors "github.com/inkwellapp/inkwell-server/internal/errors"
)

// Upload is a decoded, validated image upload.
type Upload struct {
	Image  image.Image
	Format string // "jpeg" or "png"
	Data   []byte
}

// Ext returns the file extension for the upload's format.
func (u *Upload) Ext() string {
	if u.Format == "png" {
		return ".png"
	}
	return ".jpg"
}

// DecodeUpload decodes raw upload bytes, accepting only JPEG and PNG.
// Anything else fails with a validation error.
func DecodeUpload(data []byte) (*Upload, error) {
	if len(data) == 0 {
		return nil, domainerrors.Validation("image data is empty")
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, domainerrors.Validation("could not decode image").WithCause(err)
	}
	if format != "jpeg" && format != "png" {
		return nil, domainerrors.Validation(fmt.Sprintf("unsupported image format %q, want JPEG or PNG", format))
	}

	return &Upload{Image: img, Format: format, Data: data}, nil
}

// UploadFilename returns a fresh random filename with the given
// extension. Random names keep old URLs from serving replaced images
// out of stale caches.
func UploadFilename(ext string) string {
	return uuid.NewString() + ext
}
