package access

import (
	"context"
	"sync"
	"testing"
	"time"

	"mediaflow/internal/domain/sharetoken"
	"mediaflow/internal/domain/user"
	"mediaflow/internal/rbac"
	apperrors "mediaflow/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]*sharetoken.ShareToken
}

func newMemoryTokenStore(tokens ...*sharetoken.ShareToken) *memoryTokenStore {
	s := &memoryTokenStore{tokens: make(map[string]*sharetoken.ShareToken)}
	for _, t := range tokens {
		s.tokens[t.Token] = t
	}
	return s
}

func (s *memoryTokenStore) GetByToken(_ context.Context, raw string) (*sharetoken.ShareToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[raw]
	if !ok {
		return nil, apperrors.NotFound("share token not found")
	}
	cp := *t
	return &cp, nil
}

func (s *memoryTokenStore) RecordUsage(_ context.Context, id uuid.UUID, at time.Time) (*sharetoken.ShareToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tokens {
		if t.ID != id {
			continue
		}
		t.UsageCount++
		if t.LastUsedAt == nil || at.After(*t.LastUsedAt) {
			stamp := at
			t.LastUsedAt = &stamp
		}
		cp := *t
		return &cp, nil
	}
	return nil, apperrors.NotFound("share token not found")
}

const rawToken = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func newToken(typ sharetoken.Type, expiresAt *time.Time) *sharetoken.ShareToken {
	return &sharetoken.ShareToken{
		ID:        uuid.New(),
		Token:     rawToken,
		Type:      typ,
		ExpiresAt: expiresAt,
		Scope:     sharetoken.ProjectScope(uuid.New()),
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestValidateShareToken_Unknown(t *testing.T) {
	r := NewResolver(newMemoryTokenStore())

	_, err := r.ValidateShareToken(context.Background(), rawToken, sharetoken.TypeAny)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidToken))
}

func TestValidateShareToken_MalformedNeverHitsStore(t *testing.T) {
	r := NewResolver(nil)

	_, err := r.ValidateShareToken(context.Background(), "../../etc/passwd", sharetoken.TypeAny)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidToken))
}

func TestValidateShareToken_ExpiredWinsOverTypeMismatch(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)

	for _, required := range []sharetoken.Type{sharetoken.TypeAny, sharetoken.TypeValidator, sharetoken.TypeMedia} {
		store := newMemoryTokenStore(newToken(sharetoken.TypeValidator, &past))
		r := NewResolver(store).WithClock(fixedClock(now))

		_, err := r.ValidateShareToken(context.Background(), rawToken, required)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeTokenExpired), "required=%q", required)
		assert.Equal(t, 0, store.tokens[rawToken].UsageCount, "failed validation must not count as usage")
	}
}

func TestValidateShareToken_WrongType(t *testing.T) {
	store := newMemoryTokenStore(newToken(sharetoken.TypeMedia, nil))
	r := NewResolver(store)

	_, err := r.ValidateShareToken(context.Background(), rawToken, sharetoken.TypeValidator)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeWrongTokenType))
	assert.Equal(t, 0, store.tokens[rawToken].UsageCount)
}

func TestValidateShareToken_CountsEveryUse(t *testing.T) {
	start := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	store := newMemoryTokenStore(newToken(sharetoken.TypeValidator, nil))
	clock := start
	r := NewResolver(store).WithClock(func() time.Time { return clock })

	var previous time.Time
	for i := 1; i <= 5; i++ {
		clock = start.Add(time.Duration(i) * time.Second)
		st, err := r.ValidateShareToken(context.Background(), rawToken, sharetoken.TypeValidator)
		require.NoError(t, err)

		assert.Equal(t, i, st.UsageCount)
		require.NotNil(t, st.LastUsedAt)
		assert.False(t, st.LastUsedAt.Before(previous))
		previous = *st.LastUsedAt
	}
}

func TestValidateShareToken_ExpiryBoundary(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	store := newMemoryTokenStore(newToken(sharetoken.TypeMedia, &now))
	r := NewResolver(store).WithClock(fixedClock(now))

	_, err := r.ValidateShareToken(context.Background(), rawToken, sharetoken.TypeMedia)
	assert.NoError(t, err)
}

func TestOwnershipFilter(t *testing.T) {
	admin := &user.User{ID: uuid.New(), Role: user.RoleAdmin, Status: user.StatusActive}
	member := &user.User{ID: uuid.New(), Role: user.RoleMedia, Status: user.StatusActive}

	assert.Nil(t, OwnershipFilter(SessionActor(admin, rbac.PermissionSet{})))

	filter := OwnershipFilter(SessionActor(member, rbac.PermissionSet{}))
	require.NotNil(t, filter)
	assert.Equal(t, member.ID, *filter)

	tokenFilter := OwnershipFilter(TokenActor(newToken(sharetoken.TypeValidator, nil)))
	require.NotNil(t, tokenFilter)
	assert.Equal(t, uuid.Nil, *tokenFilter)
}

func TestCanMutate(t *testing.T) {
	owner := uuid.New()
	admin := SessionActor(&user.User{ID: uuid.New(), Role: user.RoleAdmin}, nil)
	creator := SessionActor(&user.User{ID: owner, Role: user.RoleMedia}, nil)
	other := SessionActor(&user.User{ID: uuid.New(), Role: user.RoleMedia}, nil)
	tok := TokenActor(newToken(sharetoken.TypeValidator, nil))

	assert.True(t, CanMutate(admin, owner))
	assert.True(t, CanMutate(creator, owner))
	assert.False(t, CanMutate(other, owner))
	assert.False(t, CanMutate(tok, owner))
	assert.False(t, IsCreator(admin, owner))
}

type recordingValidationObserver struct {
	results []string
}

func (r *recordingValidationObserver) ObserveTokenValidation(result string) {
	r.results = append(r.results, result)
}

func TestValidateShareToken_ReportsOutcome(t *testing.T) {
	store := newMemoryTokenStore(newToken(sharetoken.TypeMedia, nil))
	obs := &recordingValidationObserver{}
	r := NewResolver(store).WithObserver(obs)

	_, _ = r.ValidateShareToken(context.Background(), rawToken, sharetoken.TypeMedia)
	_, _ = r.ValidateShareToken(context.Background(), rawToken, sharetoken.TypeValidator)
	_, _ = r.ValidateShareToken(context.Background(), "nope", sharetoken.TypeAny)

	assert.Equal(t, []string{"ok", apperrors.CodeWrongTokenType, apperrors.CodeInvalidToken}, obs.results)
}
