package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/cmsauth/internal/common"
)

// Identity is what a valid token proves about the caller.
type Identity struct {
	UserID string
	Role   string
}

// Verdict is the gate's outcome for one request. Reason is set only on a
// deny and is meant for logs, never for the client.
type Verdict struct {
	Allowed  bool
	Identity Identity
	Reason   error
}

func Allow(id Identity) Verdict { return Verdict{Allowed: true, Identity: id} }

func Deny(reason error) Verdict { return Verdict{Reason: reason} }

// Gate turns an Authorization header value into a verdict. It holds no
// mutable state.
type Gate struct {
	codec *TokenCodec
	now   func() time.Time
}

type GateOption func(*Gate)

// WithClock overrides the time source used to check expiry.
func WithClock(now func() time.Time) GateOption {
	return func(g *Gate) { g.now = now }
}

func NewGate(codec *TokenCodec, opts ...GateOption) *Gate {
	g := &Gate{codec: codec, now: time.Now}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Check always returns a verdict: absent, garbled or otherwise invalid
// credentials deny, they never error or panic.
func (g *Gate) Check(authorization string) (v Verdict) {
	defer func() {
		if r := recover(); r != nil {
			v = Deny(fmt.Errorf("%w: %v", common.ErrTokenMalformed, r))
		}
	}()

	authorization = strings.TrimSpace(authorization)
	if authorization == "" {
		return Deny(common.ErrTokenMissing)
	}

	scheme, token, ok := strings.Cut(authorization, " ")
	if !ok || !strings.EqualFold(scheme, common.BearerScheme) {
		return Deny(common.ErrTokenMalformed)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return Deny(common.ErrTokenMalformed)
	}

	claims, err := g.codec.Validate(token, g.now())
	if err != nil {
		return Deny(err)
	}
	return Allow(Identity{UserID: claims.UserID(), Role: claims.Role})
}
