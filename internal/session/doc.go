// Package session validates the signed session cookie a Graph application
// sets in the browser.
//
// The cookie is named fbs_<app id>. Its value is a quoted, URL-encoded set of
// key/value pairs that includes access_token, uid, expires and sig. sig is the
// hex MD5 of every other pair, sorted by key and concatenated as key=value,
// followed by the application secret. A session is valid when the signature
// matches and expires is either 0 or still in the future.
//
// FromCookies and UserFromCookies report every failure as nil. Validate
// returns the same session but also says why a cookie was rejected.
package session
