package requester

import (
	"context"
	"net/url"
)

// AccessTokenParam is the argument name the Graph API reads the token from.
const AccessTokenParam = "access_token"

type accessTokenKey struct{}

// WithAccessToken returns a context whose requests are authorized with token
// instead of the client's own token.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, accessTokenKey{}, token)
}

// AccessTokenFromContext returns the token stored by WithAccessToken.
func AccessTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(accessTokenKey{}).(string)
	return token, ok && token != ""
}

// AuthManager handles request authentication
type AuthManager interface {
	ApplyAuth(ctx context.Context, req *Request) error
}

// AccessTokenAuth places the access token among the request arguments: in the
// form body when there is one, in the query string otherwise.
type AccessTokenAuth struct{}

// NewAccessTokenAuth creates a new AccessTokenAuth
func NewAccessTokenAuth() *AccessTokenAuth {
	return &AccessTokenAuth{}
}

// ApplyAuth adds the access token to the request
func (a *AccessTokenAuth) ApplyAuth(ctx context.Context, req *Request) error {
	token := req.AccessToken
	if ctxToken, ok := AccessTokenFromContext(ctx); ok {
		token = ctxToken
	}
	if token == "" {
		return nil
	}

	if req.Form != nil {
		req.Form.Set(AccessTokenParam, token)
		return nil
	}
	if req.Query == nil {
		req.Query = url.Values{}
	}
	req.Query.Set(AccessTokenParam, token)
	return nil
}
