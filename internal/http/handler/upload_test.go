package handler

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mediaflow/internal/domain/event"
	"mediaflow/internal/domain/media"
	"mediaflow/internal/domain/project"
	"mediaflow/internal/domain/user"
	"mediaflow/internal/storage"
	apperrors "mediaflow/pkg/errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMaxUpload = 1 << 20

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, G: 40, B: 90, A: 255})
	}
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

type uploadPart struct {
	field, name string
	data        []byte
}

func multipartContext(t *testing.T, target string, fields map[string]string, files ...uploadPart) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return newContext(http.MethodPost, target, body, w.FormDataContentType())
}

type uploadFixture struct {
	owner    *user.User
	event    *event.Event
	events   *fakeEvents
	media    *fakeMedia
	objects  *storage.MemoryStore
	projects *fakeProjects
	handler  *UploadHandler
}

func newUploadFixture() *uploadFixture {
	owner := newUser(user.RoleMedia)
	e := &event.Event{ID: uuid.New(), Name: "Easter", Status: event.StatusDraft, CreatedByID: owner.ID}
	f := &uploadFixture{
		owner:    owner,
		event:    e,
		events:   newFakeEvents(e),
		media:    newFakeMedia(),
		objects:  storage.NewMemoryStore(),
		projects: newFakeProjects(),
	}
	f.handler = NewUploadHandler(f.media, f.events, f.events, f.projects, f.objects, testMaxUpload, &fakeAudit{})
	return f
}

func TestUploadPhotos(t *testing.T) {
	f := newUploadFixture()

	c, rec := multipartContext(t, "/api/photos/upload",
		map[string]string{formEventID: f.event.ID.String()},
		uploadPart{field: formFiles, name: "altar.png", data: pngBytes(t, 800, 600)},
		uploadPart{field: formFilesArray, name: "notes.txt", data: []byte("not an image")},
	)
	withActor(c, sessionOf(f.owner))

	require.NoError(t, f.handler.UploadPhotos(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Uploaded, 1)
	require.Len(t, resp.Errors, 1)

	photo := resp.Uploaded[0]
	assert.Equal(t, media.TypePhoto, photo.Type)
	assert.Equal(t, media.StatusPending, photo.Status)
	assert.Equal(t, "altar.png", photo.Filename)
	assert.Equal(t, "image/jpeg", photo.MimeType)
	require.NotNil(t, photo.Width)
	assert.Equal(t, 800, *photo.Width)

	assert.Equal(t, "notes.txt", resp.Errors[0].Filename)
	assert.Contains(t, resp.Errors[0].Error, "Unsupported file type")

	assert.ElementsMatch(t, []string{
		storage.EventOriginalKey(f.event.ID, photo.ID, "jpg"),
		storage.EventThumbnailKey(f.event.ID, photo.ID),
	}, f.objects.Keys())

	assert.Equal(t, []uuid.UUID{f.event.ID}, f.events.marked)
}

func TestUploadPhotosNothingStored(t *testing.T) {
	f := newUploadFixture()

	c, rec := multipartContext(t, "/api/photos/upload",
		map[string]string{formEventID: f.event.ID.String()},
		uploadPart{field: formFiles, name: "big.png", data: bytes.Repeat([]byte{0x89}, testMaxUpload+10)},
	)
	withActor(c, sessionOf(f.owner))

	require.NoError(t, f.handler.UploadPhotos(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Uploaded)
	require.Len(t, resp.Errors, 1)
	assert.True(t, strings.HasPrefix(resp.Errors[0].Error, "File too large"), resp.Errors[0].Error)
	assert.Empty(t, f.objects.Keys())
	assert.Empty(t, f.events.marked)
}

func TestUploadPhotosRejections(t *testing.T) {
	f := newUploadFixture()
	stranger := newUser(user.RoleMedia)

	tests := []struct {
		name   string
		actor  *user.User
		fields map[string]string
		files  []uploadPart
		code   string
	}{
		{
			name:  "missing event id",
			actor: f.owner,
			files: []uploadPart{{field: formFiles, name: "a.png", data: []byte("x")}},
			code:  apperrors.CodeMissingParam,
		},
		{
			name:   "no files",
			actor:  f.owner,
			fields: map[string]string{formEventID: f.event.ID.String()},
			code:   apperrors.CodeMissingFiles,
		},
		{
			name:   "event of another user",
			actor:  stranger,
			fields: map[string]string{formEventID: f.event.ID.String()},
			files:  []uploadPart{{field: formFiles, name: "a.png", data: pngBytes(t, 10, 10)}},
			code:   apperrors.CodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := multipartContext(t, "/api/photos/upload", tt.fields, tt.files...)
			withActor(c, sessionOf(tt.actor))

			err := f.handler.UploadPhotos(c)
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestUploadProjectMediaKeepsOriginal(t *testing.T) {
	f := newUploadFixture()
	p := &project.Project{ID: uuid.New(), CreatedByID: f.owner.ID}
	f.projects.items[p.ID] = p
	data := pngBytes(t, 64, 32)

	c, rec := multipartContext(t, "/api/projects/"+p.ID.String()+"/media",
		map[string]string{formType: string(media.TypeVisual)},
		uploadPart{field: formFiles, name: "poster.png", data: data},
	)
	withParams(withActor(c, sessionOf(f.owner)), paramID, p.ID.String())

	require.NoError(t, f.handler.UploadProjectMedia(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Uploaded, 1)
	item := resp.Uploaded[0]
	assert.Equal(t, media.StatusDraft, item.Status)
	assert.Equal(t, "image/png", item.MimeType)
	assert.Equal(t, int64(len(data)), item.Size)

	versions, err := f.media.ListVersions(c.Request().Context(), item.ID)
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.True(t, strings.HasSuffix(versions[0].OriginalKey, ".png"))
	assert.Equal(t, "image/png", f.objects.ContentType(versions[0].OriginalKey))
	assert.Equal(t, "image/jpeg", f.objects.ContentType(versions[0].ThumbnailKey))
}

func TestUploadProjectMediaInvalidType(t *testing.T) {
	f := newUploadFixture()
	p := &project.Project{ID: uuid.New(), CreatedByID: f.owner.ID}
	f.projects.items[p.ID] = p

	c, _ := multipartContext(t, "/", map[string]string{formType: string(media.TypePhoto)},
		uploadPart{field: formFiles, name: "a.png", data: pngBytes(t, 4, 4)},
	)
	withParams(withActor(c, sessionOf(f.owner)), paramID, p.ID.String())

	err := f.handler.UploadProjectMedia(c)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}
