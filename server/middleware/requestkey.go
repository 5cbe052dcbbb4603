package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/kbukum/webhost/di"
)

// RequestKey is the optional correlation id of one request.
type RequestKey struct {
	Value string
}

// IsEmpty reports whether the request carried no key.
func (k RequestKey) IsEmpty() bool {
	return k.Value == ""
}

func (k RequestKey) String() string {
	return k.Value
}

// RequestKeyFrom reads the RequestKeyItem of c. Absent or non-string items
// yield an empty key.
func RequestKeyFrom(c *gin.Context) RequestKey {
	v, ok := c.Get(RequestKeyItem)
	if !ok {
		return RequestKey{}
	}
	s, _ := v.(string)
	return RequestKey{Value: s}
}

// CaptureRequestKey returns the before-hook that registers the request key
// in the request container. It never stops the request.
func CaptureRequestKey() BeforeHook {
	return func(c *gin.Context) bool {
		if scope, ok := Scope(c); ok {
			_ = scope.RegisterSingleton(di.KeyRequestKey, RequestKeyFrom(c))
		}
		return true
	}
}

// ResolveRequestKey returns the key registered for the current request.
func ResolveRequestKey(c *gin.Context) RequestKey {
	scope, ok := Scope(c)
	if !ok {
		return RequestKey{}
	}
	k, _ := di.TryResolve[RequestKey](scope, di.KeyRequestKey)
	return k
}
