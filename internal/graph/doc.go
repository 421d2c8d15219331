// Package graph is a thin client for the Graph API.
//
// Every operation is a single HTTP round trip that returns either a *Result
// or one of three error types:
//
//   - *TransportError: no response was received.
//   - *ParseError: the response body was not usable JSON.
//   - *APIError: the response carried an "error" member.
//
// Calls are synchronous; Go and Async wrap any call for callers that want the
// outcome delivered later, exactly once:
//
//	client, _ := graph.New(token)
//	graph.Go(ctx, func(ctx context.Context) (*graph.Result, error) {
//		return client.GetObject(ctx, "me", nil)
//	}, func(res *graph.Result, err error) {
//		// ...
//	})
//
// The access token travels as the access_token argument, in the form body
// when a request carries data and in the query string otherwise. A token stored on the context
// with WithAccessToken takes precedence over the client's own.
package graph
