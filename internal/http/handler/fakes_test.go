package handler

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"mediaflow/internal/access"
	"mediaflow/internal/audit"
	"mediaflow/internal/domain/comment"
	"mediaflow/internal/domain/event"
	"mediaflow/internal/domain/media"
	"mediaflow/internal/domain/project"
	"mediaflow/internal/domain/sharetoken"
	"mediaflow/internal/domain/user"
	"mediaflow/internal/rbac"
	"mediaflow/internal/rbac/presets"
	"mediaflow/internal/review"
	"mediaflow/internal/storage"
	apperrors "mediaflow/pkg/errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

var (
	testChecker = rbac.MustNew(presets.MediaFlow())
	testTime    = time.Date(2026, 4, 12, 10, 0, 0, 0, time.UTC)
)

func newUser(role user.Role) *user.User {
	name := "Ana"
	return &user.User{ID: uuid.New(), Email: "ana@example.org", Name: &name, Role: role, Status: user.StatusActive}
}

func sessionOf(u *user.User) access.Actor {
	return access.SessionActor(u, testChecker.Permissions(rbac.Role(u.Role)))
}

func newContext(method, target string, body io.Reader, contentType string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func jsonContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	return newContext(method, target, r, echo.MIMEApplicationJSON)
}

func withActor(c echo.Context, a access.Actor) echo.Context {
	access.SetActor(c, a)
	return c
}

func withParams(c echo.Context, kv ...string) echo.Context {
	var names, values []string
	for i := 0; i+1 < len(kv); i += 2 {
		names = append(names, kv[i])
		values = append(values, kv[i+1])
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	return c
}

type fakeEvents struct {
	items  map[uuid.UUID]*event.Event
	marked []uuid.UUID
	del    []uuid.UUID
}

func newFakeEvents(items ...*event.Event) *fakeEvents {
	f := &fakeEvents{items: make(map[uuid.UUID]*event.Event)}
	for _, e := range items {
		f.items[e.ID] = e
	}
	return f
}

func (f *fakeEvents) Create(_ context.Context, in event.CreateEventInput) (*event.Event, error) {
	e := &event.Event{
		ID:          uuid.New(),
		Name:        in.Name,
		Date:        in.Date,
		ChurchID:    in.ChurchID,
		Description: in.Description,
		Status:      event.StatusDraft,
		CreatedByID: in.CreatedByID,
		CreatedAt:   testTime,
		UpdatedAt:   testTime,
	}
	f.items[e.ID] = e
	return e, nil
}

func (f *fakeEvents) GetByID(_ context.Context, id uuid.UUID) (*event.Event, error) {
	e, ok := f.items[id]
	if !ok {
		return nil, apperrors.NotFound(msgEventNotFound)
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEvents) GetWithStats(ctx context.Context, id uuid.UUID) (*event.WithStats, error) {
	e, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &event.WithStats{Event: *e}, nil
}

func (f *fakeEvents) List(_ context.Context, filter event.ListFilter) ([]*event.WithStats, error) {
	out := []*event.WithStats{}
	for _, e := range f.items {
		if filter.CreatedByID != nil && e.CreatedByID != *filter.CreatedByID {
			continue
		}
		out = append(out, &event.WithStats{Event: *e})
	}
	return out, nil
}

func (f *fakeEvents) Update(_ context.Context, id uuid.UUID, in event.UpdateEventInput) (*event.Event, error) {
	e, ok := f.items[id]
	if !ok {
		return nil, apperrors.NotFound(msgEventNotFound)
	}
	if in.Name != nil {
		e.Name = *in.Name
	}
	if in.Status != nil {
		e.Status = *in.Status
	}
	return e, nil
}

func (f *fakeEvents) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.items, id)
	f.del = append(f.del, id)
	return nil
}

func (f *fakeEvents) MarkPendingReview(_ context.Context, id uuid.UUID) error {
	f.marked = append(f.marked, id)
	if e, ok := f.items[id]; ok && e.Status == event.StatusDraft {
		e.Status = event.StatusPendingReview
	}
	return nil
}

type fakeProjects struct {
	items map[uuid.UUID]*project.Project
	del   []uuid.UUID
}

func newFakeProjects(items ...*project.Project) *fakeProjects {
	f := &fakeProjects{items: make(map[uuid.UUID]*project.Project)}
	for _, p := range items {
		f.items[p.ID] = p
	}
	return f
}

func (f *fakeProjects) Create(_ context.Context, in project.CreateProjectInput) (*project.Project, error) {
	p := &project.Project{ID: uuid.New(), Name: in.Name, ChurchID: in.ChurchID, Description: in.Description, CreatedByID: in.CreatedByID}
	f.items[p.ID] = p
	return p, nil
}

func (f *fakeProjects) GetByID(_ context.Context, id uuid.UUID) (*project.Project, error) {
	p, ok := f.items[id]
	if !ok {
		return nil, apperrors.NotFound(msgProjectNotFound)
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProjects) GetWithStats(ctx context.Context, id uuid.UUID, ownerID *uuid.UUID) (*project.WithStats, error) {
	p, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ownerID != nil && p.CreatedByID != *ownerID {
		return nil, apperrors.NotFound(msgProjectNotFound)
	}
	return &project.WithStats{Project: *p}, nil
}

func (f *fakeProjects) List(_ context.Context, filter project.ListFilter) ([]*project.WithStats, error) {
	out := []*project.WithStats{}
	for _, p := range f.items {
		if filter.CreatedByID != nil && p.CreatedByID != *filter.CreatedByID {
			continue
		}
		if filter.ChurchID != nil && p.ChurchID != *filter.ChurchID {
			continue
		}
		out = append(out, &project.WithStats{Project: *p})
	}
	return out, nil
}

func (f *fakeProjects) Update(ctx context.Context, id uuid.UUID, in project.UpdateProjectInput) (*project.Project, error) {
	p, ok := f.items[id]
	if !ok {
		return nil, apperrors.NotFound(msgProjectNotFound)
	}
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.ChurchID != nil {
		p.ChurchID = *in.ChurchID
	}
	if in.Description != nil {
		p.Description = in.Description
	}
	return f.GetByID(ctx, id)
}

func (f *fakeProjects) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.items, id)
	f.del = append(f.del, id)
	return nil
}

type fakeMedia struct {
	mu       sync.Mutex
	items    map[uuid.UUID]*media.WithOwner
	versions map[uuid.UUID][]*media.Version
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{
		items:    make(map[uuid.UUID]*media.WithOwner),
		versions: make(map[uuid.UUID][]*media.Version),
	}
}

// add seeds an item with one version.
func (f *fakeMedia) add(m media.Media, ownerID uuid.UUID, originalKey, thumbnailKey string) *media.WithOwner {
	f.mu.Lock()
	defer f.mu.Unlock()

	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	item := &media.WithOwner{
		Media: m,
		Owner: media.Owner{EventID: m.EventID, ProjectID: m.ProjectID, CreatedByID: ownerID},
	}
	f.items[m.ID] = item
	f.versions[m.ID] = []*media.Version{{
		ID:            uuid.New(),
		MediaID:       m.ID,
		VersionNumber: 1,
		OriginalKey:   originalKey,
		ThumbnailKey:  thumbnailKey,
		CreatedByID:   ownerID,
	}}
	return item
}

func (f *fakeMedia) Create(_ context.Context, in media.CreateMediaInput) (*media.Media, error) {
	m := media.Media{
		ID:        in.ID,
		Type:      in.Type,
		Status:    media.InitialStatus(in.Type),
		Filename:  in.Filename,
		MimeType:  in.MimeType,
		Size:      in.Size,
		Width:     in.Width,
		Height:    in.Height,
		EventID:   in.EventID,
		ProjectID: in.ProjectID,
		CreatedAt: testTime,
		UpdatedAt: testTime,
	}
	item := f.add(m, in.CreatedByID, in.OriginalKey, in.ThumbnailKey)
	cp := item.Media
	return &cp, nil
}

func (f *fakeMedia) GetWithOwner(_ context.Context, id uuid.UUID) (*media.WithOwner, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	m, ok := f.items[id]
	if !ok {
		return nil, apperrors.NotFound(msgMediaNotFound)
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMedia) ApplyTransition(_ context.Context, in media.TransitionInput) (*media.Media, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	m, ok := f.items[in.MediaID]
	if !ok {
		return nil, apperrors.NotFound(msgMediaNotFound)
	}
	if m.Status != in.From {
		return nil, apperrors.StatusChanged()
	}
	m.Status = in.To
	m.UpdatedAt = testTime
	cp := m.Media
	return &cp, nil
}

func (f *fakeMedia) List(_ context.Context, filter media.ListFilter) ([]*media.WithLatestVersion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []*media.WithLatestVersion{}
	for id, m := range f.items {
		if filter.EventID != nil && (m.EventID == nil || *m.EventID != *filter.EventID) {
			continue
		}
		if filter.ProjectID != nil && (m.ProjectID == nil || *m.ProjectID != *filter.ProjectID) {
			continue
		}
		if filter.Status != nil && m.Status != *filter.Status {
			continue
		}
		out = append(out, &media.WithLatestVersion{Media: m.Media, Latest: *f.versions[id][0]})
	}
	return out, nil
}

func (f *fakeMedia) AddVersion(_ context.Context, in media.CreateVersionInput) (*media.Version, *media.Media, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	m, ok := f.items[in.MediaID]
	if !ok {
		return nil, nil, apperrors.NotFound(msgMediaNotFound)
	}
	v := &media.Version{
		ID:            uuid.New(),
		MediaID:       in.MediaID,
		VersionNumber: len(f.versions[in.MediaID]) + 1,
		OriginalKey:   in.OriginalKey,
		ThumbnailKey:  in.ThumbnailKey,
		Notes:         in.Notes,
		CreatedByID:   in.CreatedByID,
	}
	f.versions[in.MediaID] = append([]*media.Version{v}, f.versions[in.MediaID]...)
	if m.Status == media.StatusRevisionRequested {
		m.Status = media.StatusInReview
	}
	cp := m.Media
	return v, &cp, nil
}

func (f *fakeMedia) ListVersions(_ context.Context, id uuid.UUID) ([]*media.Version, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.versions[id], nil
}

type fakeKeys struct {
	keys []string
}

func (f *fakeKeys) StorageKeysByEvent(context.Context, uuid.UUID) ([]string, error) {
	return f.keys, nil
}

func (f *fakeKeys) StorageKeysByProject(context.Context, uuid.UUID) ([]string, error) {
	return f.keys, nil
}

type fakeComments struct {
	items map[uuid.UUID]*comment.Comment
}

func newFakeComments(items ...*comment.Comment) *fakeComments {
	f := &fakeComments{items: make(map[uuid.UUID]*comment.Comment)}
	for _, cm := range items {
		f.items[cm.ID] = cm
	}
	return f
}

func (f *fakeComments) Create(_ context.Context, in comment.CreateInput) (*comment.Comment, error) {
	cm := &comment.Comment{
		ID:         uuid.New(),
		MediaID:    in.MediaID,
		Type:       in.Type,
		Content:    in.Content,
		Timecode:   in.Timecode,
		AuthorID:   in.AuthorID,
		AuthorName: in.AuthorName,
		ParentID:   in.ParentID,
		CreatedAt:  testTime,
		UpdatedAt:  testTime,
	}
	f.items[cm.ID] = cm
	return cm, nil
}

func (f *fakeComments) GetByID(_ context.Context, id uuid.UUID) (*comment.Comment, error) {
	cm, ok := f.items[id]
	if !ok {
		return nil, apperrors.NotFound(msgCommentNotFound)
	}
	return cm, nil
}

func (f *fakeComments) ListByMedia(_ context.Context, mediaID uuid.UUID) ([]*comment.Comment, error) {
	out := []*comment.Comment{}
	for _, cm := range f.items {
		if cm.MediaID == mediaID {
			out = append(out, cm)
		}
	}
	return out, nil
}

func (f *fakeComments) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.items, id)
	return nil
}

type fakeShareTokens struct {
	created []sharetoken.NewRecord
	items   []*sharetoken.ShareToken
}

func (f *fakeShareTokens) Create(_ context.Context, rec sharetoken.NewRecord) (*sharetoken.ShareToken, error) {
	f.created = append(f.created, rec)
	st := &sharetoken.ShareToken{
		ID:        uuid.New(),
		Token:     rec.Token,
		Type:      rec.Type,
		Label:     rec.Label,
		ExpiresAt: rec.ExpiresAt,
		CreatedAt: testTime,
		Scope:     rec.Scope,
	}
	f.items = append(f.items, st)
	return st, nil
}

func (f *fakeShareTokens) ListByScope(_ context.Context, scope sharetoken.Scope) ([]*sharetoken.ShareToken, error) {
	out := []*sharetoken.ShareToken{}
	for _, st := range f.items {
		if scope.EventID != nil && st.IsEvent(*scope.EventID) || scope.ProjectID != nil && st.IsProject(*scope.ProjectID) {
			out = append(out, st)
		}
	}
	return out, nil
}

type fakeTransitioner struct {
	actor   access.Actor
	mediaID uuid.UUID
	req     review.Request
	err     error
}

func (f *fakeTransitioner) Transition(_ context.Context, actor access.Actor, mediaID uuid.UUID, req review.Request) (media.Projection, error) {
	f.actor, f.mediaID, f.req = actor, mediaID, req
	if f.err != nil {
		return media.Projection{}, f.err
	}
	return media.Projection{ID: mediaID, Status: req.Status, UpdatedAt: testTime}, nil
}

type fakeSigner struct {
	fail map[string]bool
}

func (f *fakeSigner) URL(ctx context.Context, key string) (string, error) {
	return f.URLWithTTL(ctx, key, time.Hour)
}

func (f *fakeSigner) URLWithTTL(_ context.Context, key string, ttl time.Duration) (string, error) {
	if f.fail[key] {
		return "", errors.New("sign failed")
	}
	return "https://signed.example/" + key + "?ttl=" + ttl.String(), nil
}

func (f *fakeSigner) BatchURLs(ctx context.Context, keys []string, _ int) (map[string]string, []storage.BatchResult) {
	urls := make(map[string]string, len(keys))
	var failed []storage.BatchResult
	for _, key := range keys {
		url, err := f.URL(ctx, key)
		if err != nil {
			failed = append(failed, storage.BatchResult{Key: key, Error: err.Error()})
			continue
		}
		urls[key] = url
	}
	return urls, failed
}

type auditEntry struct {
	resourceType audit.ResourceType
	action       audit.Action
	status       audit.Status
	metadata     map[string]any
}

type fakeAudit struct {
	entries []auditEntry
	events  []*audit.Event
	filter  audit.QueryFilter
}

func (f *fakeAudit) LogFromContext(_ echo.Context, rt audit.ResourceType, _ *uuid.UUID, action audit.Action, status audit.Status, metadata map[string]any) {
	f.entries = append(f.entries, auditEntry{resourceType: rt, action: action, status: status, metadata: metadata})
}

func (f *fakeAudit) LogError(_ echo.Context, rt audit.ResourceType, _ *uuid.UUID, action audit.Action, err error) {
	f.entries = append(f.entries, auditEntry{resourceType: rt, action: action, status: audit.StatusFailure, metadata: map[string]any{"error": err.Error()}})
}

func (f *fakeAudit) Query(_ context.Context, filter audit.QueryFilter) ([]*audit.Event, error) {
	f.filter = filter
	return f.events, nil
}

func (f *fakeAudit) last() auditEntry {
	if len(f.entries) == 0 {
		return auditEntry{}
	}
	return f.entries[len(f.entries)-1]
}

type fakeCSRF struct {
	token string
	err   error
}

func (f fakeCSRF) GetOrCreateToken(uuid.UUID) (string, error) {
	return f.token, f.err
}
