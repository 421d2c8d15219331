package session

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/brizzai/graph-mcp/internal/config"
)

// CookiePrefix is prepended to the application id to form the cookie name.
const CookiePrefix = "fbs_"

// Well-known session keys.
const (
	KeyAccessToken = "access_token"
	KeyUID         = "uid"
	KeyExpires     = "expires"
	KeySig         = "sig"
)

var (
	// ErrNoCookie is returned when the request carries no session cookie for the app.
	ErrNoCookie = errors.New("session cookie not present")

	// ErrMalformed is returned when the cookie value cannot be decoded.
	ErrMalformed = errors.New("session cookie malformed")

	// ErrBadSignature is returned when the signature does not match the payload.
	ErrBadSignature = errors.New("session signature mismatch")

	// ErrExpired is returned when a correctly signed session is past its expiry.
	ErrExpired = errors.New("session expired")
)

// Session is the decoded cookie payload, sig included.
type Session map[string]string

// AccessToken returns the session's access token.
func (s Session) AccessToken() string { return s[KeyAccessToken] }

// UID returns the id of the user the session belongs to.
func (s Session) UID() string { return s[KeyUID] }

// ExpiresAt returns the expiry time, or the zero time for sessions that do not expire.
func (s Session) ExpiresAt() time.Time {
	n, err := strconv.ParseInt(s[KeyExpires], 10, 64)
	if err != nil || n == 0 {
		return time.Time{}
	}
	return time.Unix(n, 0)
}

// User narrows the session to the caller's identity. Nil sessions give nil.
func (s Session) User() *User {
	if s == nil {
		return nil
	}
	return &User{AccessToken: s.AccessToken(), UID: s.UID()}
}

// User is the identity carried by a valid session.
type User struct {
	AccessToken string `json:"access_token"`
	UID         string `json:"uid"`
}

// CookieName returns the name of the session cookie for appID.
func CookieName(appID string) string {
	return CookiePrefix + appID
}

// Validator checks session cookies issued for one application.
type Validator struct {
	AppID     string
	AppSecret string
	// Now defaults to time.Now.
	Now func() time.Time
}

// NewValidator builds a Validator from app.* settings.
func NewValidator(cfg *config.AppConfig) *Validator {
	return &Validator{AppID: cfg.ID, AppSecret: cfg.Secret}
}

func (v *Validator) now() time.Time {
	if v.Now != nil {
		return v.Now()
	}
	return time.Now()
}

// Validate decodes and verifies the app's session cookie. On failure the
// error is one of ErrNoCookie, ErrMalformed, ErrBadSignature or ErrExpired.
func (v *Validator) Validate(cookies map[string]string) (Session, error) {
	raw := cookies[CookieName(v.AppID)]
	if raw == "" {
		return nil, ErrNoCookie
	}
	raw = strings.TrimPrefix(raw, `"`)
	raw = strings.TrimSuffix(raw, `"`)

	values, err := url.ParseQuery(raw)
	if err != nil {
		return nil, ErrMalformed
	}

	candidate := make(Session, len(values))
	for key, vs := range values {
		// a repeated key makes the signed payload ambiguous
		if len(vs) != 1 {
			return nil, ErrMalformed
		}
		candidate[key] = vs[0]
	}

	expires, err := strconv.ParseInt(candidate[KeyExpires], 10, 64)
	if err != nil {
		return nil, ErrMalformed
	}

	expected := []byte(Sign(candidate, v.AppSecret))
	if subtle.ConstantTimeCompare(expected, []byte(candidate[KeySig])) != 1 {
		return nil, ErrBadSignature
	}

	if expires != 0 && v.now().Unix() >= expires {
		return nil, ErrExpired
	}
	return candidate, nil
}

// Session returns the validated session, or nil for any kind of failure.
func (v *Validator) Session(cookies map[string]string) Session {
	s, err := v.Validate(cookies)
	if err != nil {
		return nil
	}
	return s
}

// User returns the identity of a valid session, or nil.
func (v *Validator) User(cookies map[string]string) *User {
	return v.Session(cookies).User()
}

// FromRequest validates the session cookie carried by r.
func (v *Validator) FromRequest(r *http.Request) (Session, error) {
	return v.Validate(RequestCookies(r))
}

// RequestCookies flattens the request's cookies into a name → value map.
// When a name repeats, the first occurrence wins.
func RequestCookies(r *http.Request) map[string]string {
	cookies := make(map[string]string)
	for _, c := range r.Cookies() {
		if _, seen := cookies[c.Name]; !seen {
			cookies[c.Name] = c.Value
		}
	}
	return cookies
}

// FromCookies returns the app's validated session from cookies, or nil when
// the cookie is missing, malformed, wrongly signed or expired.
func FromCookies(cookies map[string]string, appID, appSecret string) Session {
	v := Validator{AppID: appID, AppSecret: appSecret}
	return v.Session(cookies)
}

// UserFromCookies is FromCookies narrowed to {access_token, uid}.
func UserFromCookies(cookies map[string]string, appID, appSecret string) *User {
	return FromCookies(cookies, appID, appSecret).User()
}

// Validate is the package-level form of Validator.Validate.
func Validate(cookies map[string]string, appID, appSecret string) (Session, error) {
	v := Validator{AppID: appID, AppSecret: appSecret}
	return v.Validate(cookies)
}

// Payload returns the string a session signature is computed over: every
// key=value pair except sig, in ascending key order, with no separator.
func Payload(values map[string]string) string {
	keys := make([]string, 0, len(values))
	for key := range values {
		if key != KeySig {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(values[key])
	}
	return b.String()
}

// Sign returns the lowercase hex MD5 of Payload(values) followed by appSecret.
func Sign(values map[string]string, appSecret string) string {
	sum := md5.Sum([]byte(Payload(values) + appSecret))
	return hex.EncodeToString(sum[:])
}

// Encode signs values and renders them as a quoted cookie value accepted by
// Validate. values is not modified.
func Encode(values map[string]string, appSecret string) string {
	q := url.Values{}
	for key, value := range values {
		if key != KeySig {
			q.Set(key, value)
		}
	}
	q.Set(KeySig, Sign(values, appSecret))
	return `"` + q.Encode() + `"`
}
