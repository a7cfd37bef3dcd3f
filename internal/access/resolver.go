package access

import (
	"context"
	"errors"
	"time"

	"mediaflow/internal/domain/sharetoken"
	apperrors "mediaflow/pkg/errors"
	"mediaflow/pkg/token"

	"github.com/google/uuid"
)

// TokenStore is the persistence the resolver needs.
type TokenStore interface {
	GetByToken(ctx context.Context, token string) (*sharetoken.ShareToken, error)
	RecordUsage(ctx context.Context, id uuid.UUID, at time.Time) (*sharetoken.ShareToken, error)
}

// ValidationObserver is told the outcome of every validation: "ok" or the
// error code.
type ValidationObserver interface {
	ObserveTokenValidation(result string)
}

type nopValidationObserver struct{}

func (nopValidationObserver) ObserveTokenValidation(string) {}

const validationOK = "ok"

type Resolver struct {
	tokens   TokenStore
	now      func() time.Time
	observer ValidationObserver
}

func NewResolver(tokens TokenStore) *Resolver {
	return &Resolver{tokens: tokens, now: time.Now, observer: nopValidationObserver{}}
}

func (r *Resolver) WithObserver(o ValidationObserver) *Resolver {
	if o != nil {
		r.observer = o
	}
	return r
}

// WithClock replaces the time source.
func (r *Resolver) WithClock(now func() time.Time) *Resolver {
	r.now = now
	return r
}

// ValidateShareToken looks up raw and checks it, in order, for existence,
// expiry and type. Pass sharetoken.TypeAny to skip the type check. Every
// successful call counts as one use of the token.
func (r *Resolver) ValidateShareToken(ctx context.Context, raw string, required sharetoken.Type) (*sharetoken.ShareToken, error) {
	st, err := r.validate(ctx, raw, required)

	result := validationOK
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			result = appErr.Code
		} else {
			result = apperrors.CodeInternal
		}
	}
	r.observer.ObserveTokenValidation(result)

	return st, err
}

func (r *Resolver) validate(ctx context.Context, raw string, required sharetoken.Type) (*sharetoken.ShareToken, error) {
	if !token.IsShareTokenFormat(raw) {
		return nil, apperrors.InvalidToken()
	}

	st, err := r.tokens.GetByToken(ctx, raw)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.InvalidToken()
		}
		return nil, err
	}

	now := r.now()
	if st.IsExpired(now) {
		return nil, apperrors.TokenExpired()
	}

	if required != sharetoken.TypeAny && st.Type != required {
		return nil, apperrors.WrongTokenType()
	}

	used, err := r.tokens.RecordUsage(ctx, st.ID, now)
	if err != nil {
		return nil, err
	}

	return used, nil
}
