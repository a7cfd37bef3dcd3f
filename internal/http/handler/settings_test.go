package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"mediaflow/internal/audit"
	"mediaflow/internal/domain/user"
	apperrors "mediaflow/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSettings(t *testing.T) {
	h := NewSettingsHandler("https://media.example.org", 50<<20, time.Hour, &fakeAudit{})

	c, rec := jsonContext(http.MethodGet, "/settings", "")
	withActor(c, sessionOf(newUser(user.RoleAdmin)))

	require.NoError(t, h.GetSettings(c))

	var body Settings
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "https://media.example.org", body.BaseURL)
	assert.Equal(t, int64(50<<20), body.MaxUploadSize)
	assert.Equal(t, "52 MB", body.MaxUploadSizeHuman)
	assert.Equal(t, 3600, body.SignedURLTTLSeconds)
}

func TestGetSettingsInactiveAccount(t *testing.T) {
	h := NewSettingsHandler("https://media.example.org", 1, time.Hour, &fakeAudit{})
	u := newUser(user.RoleAdmin)
	u.Status = user.StatusPending

	c, _ := jsonContext(http.MethodGet, "/settings", "")
	withActor(c, sessionOf(u))

	err := h.GetSettings(c)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeAccountInactive))
}

func TestListAuditEvents(t *testing.T) {
	auditLog := &fakeAudit{events: []*audit.Event{{Action: audit.ActionShare}}}
	h := NewSettingsHandler("", 1, time.Hour, auditLog)
	resourceID := uuid.New()

	c, rec := jsonContext(http.MethodGet, "/api/audit?resourceType=media&action=transition&resourceId="+resourceID.String()+"&since=2026-04-01T00:00:00Z&limit=20", "")

	require.NoError(t, h.ListAuditEvents(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	f := auditLog.filter
	require.NotNil(t, f.ResourceType)
	assert.Equal(t, audit.ResourceTypeMedia, *f.ResourceType)
	require.NotNil(t, f.Action)
	assert.Equal(t, audit.ActionTransition, *f.Action)
	require.NotNil(t, f.ResourceID)
	assert.Equal(t, resourceID, *f.ResourceID)
	require.NotNil(t, f.StartTime)
	assert.Equal(t, 2026, f.StartTime.Year())
	assert.Equal(t, 20, f.Limit)
	assert.Nil(t, f.ActorID)
}

func TestListAuditEventsBadQuery(t *testing.T) {
	h := NewSettingsHandler("", 1, time.Hour, &fakeAudit{})

	for _, q := range []string{"limit=0", "limit=ten", "since=yesterday", "actorId=nope"} {
		c, _ := jsonContext(http.MethodGet, "/api/audit?"+q, "")
		assert.Error(t, h.ListAuditEvents(c), q)
	}
}
