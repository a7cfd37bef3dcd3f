package handler

import (
	"context"

	"mediaflow/internal/domain/media"
	"mediaflow/internal/storage"

	"github.com/labstack/echo/v4"
)

// MediaView is a listed item with a short-lived preview link.
type MediaView struct {
	media.Media
	VersionNumber int    `json:"versionNumber"`
	ThumbnailURL  string `json:"thumbnailUrl,omitempty"`
}

func thumbnailKey(item *media.WithLatestVersion) string {
	if item.Latest.ThumbnailKey != "" {
		return item.Latest.ThumbnailKey
	}
	return item.Latest.OriginalKey
}

// signedViews signs every thumbnail concurrently. An item whose link could
// not be signed is still listed, without a URL.
func signedViews(ctx context.Context, c echo.Context, signer URLSigner, items []*media.WithLatestVersion) []MediaView {
	keys := make([]string, 0, len(items))
	for _, item := range items {
		keys = append(keys, thumbnailKey(item))
	}

	urls, failed := signer.BatchURLs(ctx, keys, storage.DefaultMaxWorkers)
	for _, f := range failed {
		c.Logger().Warn("thumbnail_sign_failed", "key", f.Key, "error", f.Error)
	}

	views := make([]MediaView, 0, len(items))
	for _, item := range items {
		views = append(views, MediaView{
			Media:         item.Media,
			VersionNumber: item.Latest.VersionNumber,
			ThumbnailURL:  urls[thumbnailKey(item)],
		})
	}
	return views
}
