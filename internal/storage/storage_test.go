package storage

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestEventKeys(t *testing.T) {
	eventID := uuid.MustParse("0b6f1c7e-3a52-4c3e-9a55-5d3c3f0f6a11")
	mediaID := uuid.MustParse("6a1f4e2d-8f0c-4b7a-a1d2-9c3e5f7a8b90")

	assert.Equal(t,
		"events/0b6f1c7e-3a52-4c3e-9a55-5d3c3f0f6a11/6a1f4e2d-8f0c-4b7a-a1d2-9c3e5f7a8b90/original.jpg",
		EventOriginalKey(eventID, mediaID, ".JPG"))
	assert.Equal(t,
		"events/0b6f1c7e-3a52-4c3e-9a55-5d3c3f0f6a11/6a1f4e2d-8f0c-4b7a-a1d2-9c3e5f7a8b90/thumbnail.jpg",
		EventThumbnailKey(eventID, mediaID))
}

func TestProjectKeys(t *testing.T) {
	projectID, mediaID, revision := uuid.New(), uuid.New(), uuid.New()

	original := ProjectOriginalKey(projectID, mediaID, revision, "mp4")
	assert.Equal(t, "projects/"+projectID.String()+"/"+mediaID.String()+"/"+revision.String()+"/original.mp4", original)
	assert.NotEqual(t, original, ProjectOriginalKey(projectID, mediaID, uuid.New(), "mp4"))
	assert.Contains(t, ProjectThumbnailKey(projectID, mediaID, revision), revision.String()+"/thumbnail.jpg")
}

func TestNormalizeExt(t *testing.T) {
	assert.Equal(t, "png", normalizeExt(".PNG"))
	assert.Equal(t, "bin", normalizeExt(""))
}
