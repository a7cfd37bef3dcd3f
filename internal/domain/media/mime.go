package media

var (
	PhotoMimeTypes  = []string{"image/jpeg", "image/png", "image/webp", "image/heic", "image/heif"}
	VisualMimeTypes = []string{"image/png", "image/svg+xml", "application/pdf"}
	VideoMimeTypes  = []string{"video/mp4", "video/quicktime", "video/webm"}
)

// AllowedMimeTypes returns the accepted upload formats for t.
func AllowedMimeTypes(t Type) []string {
	switch t {
	case TypePhoto:
		return PhotoMimeTypes
	case TypeVisual:
		return VisualMimeTypes
	case TypeVideo:
		return VideoMimeTypes
	default:
		return nil
	}
}

func IsAllowedMimeType(t Type, mimeType string) bool {
	for _, allowed := range AllowedMimeTypes(t) {
		if allowed == mimeType {
			return true
		}
	}
	return false
}
