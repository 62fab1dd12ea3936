// Package videodb provides a client for the VideoDB video API: uploads,
// transcription, scene indexing, search and stream compilation.
//
// The transport wraps [github.com/go-resty/resty/v2] with automatic retries,
// a pooled session, pluggable logging and transparent waiting for the
// server's asynchronous jobs.
//
// # Basic Usage
//
//	c, err := videodb.New(videodb.DefaultBaseURL, apiKey,
//	    videodb.WithRetryCount(5),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
//
//	conn, _ := videodb.NewConnection(c)
//	coll, err := conn.GetCollection(ctx, "")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	media, err := coll.Upload(ctx, videodb.UploadRequest{URL: "https://example.com/talk.mp4"})
//
// # Configuration
//
// All configuration is supplied as [Option] functions passed to [New].
// Invalid values are silently ignored and the default is retained; the
// resulting configuration is validated by [New]. Per-call settings such as
// extra headers, query parameters or a timeout are [RequestOption] values.
// The config subpackage loads the same settings from the environment.
//
// # Retry Behaviour
//
// [DefaultRetryPolicy] retries physical requests on HTTP 429 and on 500,
// 502, 503 and 504, and on transient connection errors. It respects the
// Retry-After response header for rate-limit backoff. Context cancellation,
// deadline exceeded, and DNS resolution errors are never retried. Supply a
// custom function via [WithRetryPolicy] to override this behaviour.
//
// # Asynchronous Jobs
//
// Every response is an [Envelope]. When the server answers a blocking call
// with status "processing", the client polls the job's output URL with
// exponential backoff until it finishes, and returns the final payload.
// [WithPollInterval], [WithPollMaxInterval] and [WithPollTimeout] tune the
// loop; running out of time yields a [*PollTimeoutError]. Jobs submitted as
// asynchronous return a nil payload immediately.
//
// # Errors
//
// A rejected access token yields [*AuthenticationError]. Every other
// request, response or protocol failure yields [*InvalidRequestError].
// Local misuse, such as an upload with neither a file nor a URL, yields
// [*Error]. Use errors.Is with [ErrAuthentication], [ErrInvalidRequest] or
// [ErrPollTimeout], or errors.As to reach the triggering response.
//
// # Logging
//
// Implement [RequestLogger] and supply it via [WithRequestLogger] to
// integrate with your logging library, or wrap a zerolog logger with
// [NewZerologLogger]. The default [NoopLogger] discards all log output. The
// access token is never logged.
package videodb
