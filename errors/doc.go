// Package errors defines the error envelope every webhost response uses.
//
// Each ErrorCode has one HTTP status, a retryable flag and a default client
// message. Constructors fill in the request specific details:
//
//	AbortWithError(c, errors.PayloadTooLarge(limit))
//	// 413 {"error":{"code":"PAYLOAD_TOO_LARGE","message":"...","retryable":false,"details":{"limit_bytes":1024}}}
package errors
