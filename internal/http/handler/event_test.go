package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"mediaflow/internal/domain/event"
	"mediaflow/internal/domain/user"
	"mediaflow/internal/storage"
	apperrors "mediaflow/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingDeletes struct {
	*storage.MemoryStore
}

func (failingDeletes) DeleteMany(context.Context, []string) error {
	return errors.New("bucket unavailable")
}

func seedObjects(t *testing.T, store *storage.MemoryStore, keys ...string) {
	t.Helper()
	for _, key := range keys {
		require.NoError(t, store.Put(context.Background(), key, strings.NewReader("x"), 1, "image/jpeg"))
	}
}

func TestCreateEvent(t *testing.T) {
	owner := newUser(user.RoleMedia)
	events := newFakeEvents()
	h := NewEventHandler(events, &fakeKeys{}, storage.NewMemoryStore(), &fakeAudit{})
	churchID := uuid.New()

	c, rec := jsonContext(http.MethodPost, "/", `{"name":" Easter ","date":"2026-04-05","churchId":"`+churchID.String()+`"}`)
	withActor(c, sessionOf(owner))

	require.NoError(t, h.CreateEvent(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var body event.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Easter", body.Name)
	assert.Equal(t, event.StatusDraft, body.Status)
	assert.Equal(t, owner.ID, body.CreatedByID)
	assert.Equal(t, 2026, body.Date.Year())
}

func TestCreateEventValidation(t *testing.T) {
	churchID := uuid.New().String()
	tests := []struct {
		name string
		body string
	}{
		{name: "blank name", body: `{"name":"  ","date":"2026-04-05","churchId":"` + churchID + `"}`},
		{name: "bad date", body: `{"name":"Easter","date":"05/04/2026","churchId":"` + churchID + `"}`},
		{name: "long name", body: `{"name":"` + strings.Repeat("x", 256) + `","date":"2026-04-05","churchId":"` + churchID + `"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := newFakeEvents()
			h := NewEventHandler(events, &fakeKeys{}, storage.NewMemoryStore(), &fakeAudit{})
			c, _ := jsonContext(http.MethodPost, "/", tt.body)
			withActor(c, sessionOf(newUser(user.RoleMedia)))

			err := h.CreateEvent(c)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation), "got %v", err)
			assert.Empty(t, events.items)
		})
	}
}

func TestGetEventOfAnotherUser(t *testing.T) {
	e := &event.Event{ID: uuid.New(), CreatedByID: uuid.New()}
	h := NewEventHandler(newFakeEvents(e), &fakeKeys{}, storage.NewMemoryStore(), &fakeAudit{})

	for _, role := range []user.Role{user.RoleMedia, user.RoleAdmin} {
		c, _ := jsonContext(http.MethodGet, "/", "")
		withParams(withActor(c, sessionOf(newUser(role))), paramID, e.ID.String())

		err := h.GetEvent(c)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound), "role %s: %v", role, err)
	}
}

func TestDeleteEvent(t *testing.T) {
	owner := newUser(user.RoleMedia)
	e := &event.Event{ID: uuid.New(), CreatedByID: owner.ID}
	events := newFakeEvents(e)
	store := storage.NewMemoryStore()
	keys := []string{"events/a/original.jpg", "events/a/thumbnail.jpg"}
	seedObjects(t, store, append(keys, "events/other/original.jpg")...)
	h := NewEventHandler(events, &fakeKeys{keys: keys}, store, &fakeAudit{})

	c, rec := jsonContext(http.MethodDelete, "/", "")
	withParams(withActor(c, sessionOf(owner)), paramID, e.ID.String())

	require.NoError(t, h.DeleteEvent(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Zero(t, rec.Body.Len())
	assert.Equal(t, []string{"events/other/original.jpg"}, store.Keys())
	assert.Equal(t, []uuid.UUID{e.ID}, events.del)
}

func TestDeleteEventStorageFailureKeepsRow(t *testing.T) {
	owner := newUser(user.RoleMedia)
	e := &event.Event{ID: uuid.New(), CreatedByID: owner.ID}
	events := newFakeEvents(e)
	h := NewEventHandler(events, &fakeKeys{keys: []string{"k"}}, failingDeletes{storage.NewMemoryStore()}, &fakeAudit{})

	c, _ := jsonContext(http.MethodDelete, "/", "")
	withParams(withActor(c, sessionOf(owner)), paramID, e.ID.String())

	require.Error(t, h.DeleteEvent(c))
	assert.Empty(t, events.del)
	assert.Contains(t, events.items, e.ID)
}
