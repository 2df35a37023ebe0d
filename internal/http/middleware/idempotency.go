package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey is the request header clients send on unsafe methods
// (POST /applications) so that network retries do not create duplicate
// records. The value must be stable per semantic operation.
const HeaderIdempotencyKey = "Idempotency-Key"

const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay"
	ctxKeyRateBypass = "rate.bypass"
)

// GetIdempotencyKey returns the validated key stashed by IdempotencyValidator.
// Handlers read it from here rather than from the raw header.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IsReplay reports whether this request repeats a previously completed
// operation for the same user and key. Handlers use it to return the stored
// result instead of creating a second record.
func IsReplay(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyIdemReplay)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// IdempotencyOptions tunes header validation. TTL is not enforced here; the
// lookup decides whether a stored record is still live.
type IdempotencyOptions struct {
	// MaxLen caps the accepted key length; <= 0 defaults to 200.
	MaxLen int
	// Pattern restricts allowed characters. Nil uses a conservative token
	// pattern: ^[A-Za-z0-9._~\-:]+$
	Pattern *regexp.Regexp
}

// IdempotencyLookup answers whether a completed, unexpired result exists for
// (userID, key) at now. Lookup failures must not block the request; return an
// error only to report, never to reject.
type IdempotencyLookup func(ctx context.Context, userID, key string, now time.Time) (bool, error)

// IdempotencyValidator validates the Idempotency-Key header when present,
// stashes the key in the context, and consults the lookup for a prior result.
// A detected replay sets the replay flag and the rate-limit bypass flag; the
// middleware never serves the cached payload itself, the handler does.
// Requests without the header pass through untouched; malformed keys are
// rejected with 400 before any handler runs.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": RequestIDFrom(c),
				"code":       "bad_idempotency_key",
				"message":    "invalid Idempotency-Key",
			})
			return
		}

		c.Set(ctxKeyIdemKey, key)

		if lookup != nil {
			if uid := UserIDFrom(c); uid != "" {
				if exists, _ := lookup(c.Request.Context(), uid, key, time.Now().UTC()); exists {
					c.Set(ctxKeyIdemReplay, true)
					c.Set(ctxKeyRateBypass, true)
				}
			}
		}

		c.Next()
	}
}
