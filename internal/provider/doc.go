// Package provider calls third-party LLM HTTP APIs to generate text.
//
// Each supported provider is described by a dialect that knows its endpoint,
// auth headers, request body, and how to pull the generated text out of the
// response. Client.Generate wraps a single call with a fixed number of
// attempts, linear backoff, and a per-attempt timeout. There is no circuit
// breaking or rate limiting; callers substitute demo content when every
// attempt fails.
package provider
