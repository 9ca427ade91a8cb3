package model

import "errors"

// Upload limits and normalized dimensions per image kind.
const (
	MaxImageSizeBytes = 5 * 1024 * 1024 // 5MB

	AvatarWidth  = 200
	AvatarHeight = 200
	BannerWidth  = 1200
	BannerHeight = 400
	IconWidth    = 256
	IconHeight   = 256

	AvatarFolder = "avatars"
	BannerFolder = "banners"
	IconFolder   = "community_icons"
	EventFolder  = "event_images"

	ImageExt          = ".jpg"
	ImageCacheControl = "public, max-age=31536000" // 1 year
)

// Profile image kinds accepted by the upload-image endpoint.
const (
	ImageTypeAvatar = "avatar"
	ImageTypeBanner = "banner"
)

// Supported image content types for upload validation. The original API only
// accepts JPG and PNG.
const (
	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"
)

var allowedImageTypes = map[string]struct{}{
	ContentTypeJPEG: {},
	ContentTypePNG:  {},
}

// IsAllowedImageType reports if the provided content type is supported
func IsAllowedImageType(contentType string) bool {
	_, ok := allowedImageTypes[contentType]
	return ok
}

// Error codes for HTTP responses
const (
	CodeFileTooLarge     = "FILE_TOO_LARGE"
	CodeInvalidImageType = "INVALID_IMAGE_TYPE"
)

var (
	ErrFileTooLarge     = errors.New("file too large")
	ErrInvalidImageType = errors.New("invalid image type")
)

// UploadResult represents the uploaded object location.
// URL is the public-facing URL; Key is the object key inside the bucket,
// kept so a replaced image can be deleted later.
type UploadResult struct {
	URL string `json:"url"`
	Key string `json:"key"`
}
