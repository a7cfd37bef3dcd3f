// Package imaging validates uploaded files and derives the stored original
// and its thumbnail.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"mime"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/nfnt/resize"
	_ "golang.org/x/image/webp"
)

const (
	ThumbnailWidth      = 400
	OriginalJPEGQuality = 90
	ThumbnailQuality    = 85
	JPEGContentType     = "image/jpeg"
	jpegExt             = "jpg"
	defaultExt          = "bin"

	errUnsupportedTypeFmt = "Unsupported file type: %s"
	errFileTooLargeFmt    = "File too large: %s (max %s)"
	errEmptyFile          = "File is empty"
	errEncodeOriginalFmt  = "failed to encode original: %w"
	errEncodeThumbnailFmt = "failed to encode thumbnail: %w"
)

var ErrNotDecodable = errors.New("image format cannot be decoded")

var extensions = map[string]string{
	"image/jpeg":      "jpg",
	"image/png":       "png",
	"image/webp":      "webp",
	"image/heic":      "heic",
	"image/heif":      "heif",
	"image/svg+xml":   "svg",
	"application/pdf": "pdf",
	"video/mp4":       "mp4",
	"video/quicktime": "mov",
	"video/webm":      "webm",
}

// Detect sniffs the content type of data, without parameters.
func Detect(data []byte) string {
	detected := mimetype.Detect(data).String()
	if mediaType, _, err := mime.ParseMediaType(detected); err == nil {
		return mediaType
	}
	return detected
}

// Extension maps a content type to the file extension objects are stored
// under.
func Extension(contentType string) string {
	if ext, ok := extensions[contentType]; ok {
		return ext
	}
	return defaultExt
}

// Validate checks size and sniffed type against the allowed list and
// returns the detected type. Messages are safe to show to uploaders.
func Validate(data []byte, maxSize int64, allowed []string) (string, error) {
	if len(data) == 0 {
		return "", errors.New(errEmptyFile)
	}

	if int64(len(data)) > maxSize {
		return "", fmt.Errorf(errFileTooLargeFmt, humanize.Bytes(uint64(len(data))), humanize.Bytes(uint64(maxSize)))
	}

	contentType := Detect(data)
	for _, a := range allowed {
		if a == contentType {
			return contentType, nil
		}
	}

	return "", fmt.Errorf(errUnsupportedTypeFmt, contentType)
}

// Processed is what gets written to object storage for one upload.
type Processed struct {
	Original            []byte
	OriginalContentType string
	OriginalExt         string
	// Thumbnail is nil when the format could not be decoded; callers
	// then point the thumbnail at the original.
	Thumbnail []byte
	Width     *int
	Height    *int
}

// Process re-encodes decodable images as JPEG and renders a thumbnail
// ThumbnailWidth pixels wide, never enlarging. Formats Go cannot decode
// (HEIC, SVG, PDF, video) are passed through untouched.
func Process(data []byte, contentType string) (*Processed, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return &Processed{
			Original:            data,
			OriginalContentType: contentType,
			OriginalExt:         Extension(contentType),
		}, nil
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	original := new(bytes.Buffer)
	if err := jpeg.Encode(original, img, &jpeg.Options{Quality: OriginalJPEGQuality}); err != nil {
		return nil, fmt.Errorf(errEncodeOriginalFmt, err)
	}

	thumb, err := Thumbnail(img)
	if err != nil {
		return nil, err
	}

	return &Processed{
		Original:            original.Bytes(),
		OriginalContentType: JPEGContentType,
		OriginalExt:         jpegExt,
		Thumbnail:           thumb,
		Width:               &width,
		Height:              &height,
	}, nil
}

// Thumbnail encodes img as a JPEG at most ThumbnailWidth wide.
func Thumbnail(img image.Image) ([]byte, error) {
	scaled := img
	if img.Bounds().Dx() > ThumbnailWidth {
		scaled = resize.Resize(ThumbnailWidth, 0, img, resize.Lanczos3)
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, scaled, &jpeg.Options{Quality: ThumbnailQuality}); err != nil {
		return nil, fmt.Errorf(errEncodeThumbnailFmt, err)
	}

	return buf.Bytes(), nil
}
