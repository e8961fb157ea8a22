package server

import (
	"net/http"
	"strconv"
	"strings"
	gosync "sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	requestIDHeader = "X-Request-ID"

	ctxRequestID = "requestID"
	ctxUserID    = "userID"
)

// requestID tags every request with an id, reusing the client's when given.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(ctxRequestID, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// requestLogger logs one line per request.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetString(ctxRequestID)),
		}
		if uid, ok := c.Get(ctxUserID); ok {
			fields = append(fields, zap.Int64("user_id", uid.(int64)))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			logger.Error("request", fields...)
		case c.Writer.Status() >= http.StatusBadRequest:
			logger.Warn("request", fields...)
		default:
			logger.Debug("request", fields...)
		}
	}
}

// authenticate requires a valid bearer token and stores its user id.
func authenticate(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			abortWithMessage(c, http.StatusUnauthorized, "missing bearer token")
			return
		}

		userID, err := parseToken(secret, strings.TrimSpace(raw))
		if err != nil {
			_ = c.Error(err)
			abortWithMessage(c, http.StatusUnauthorized, "invalid token")
			return
		}

		c.Set(ctxUserID, userID)
		c.Next()
	}
}

// limiterSet holds one token bucket per caller.
type limiterSet struct {
	mu       gosync.Mutex
	limiters map[string]*rate.Limiter
	perMin   int
}

func newLimiterSet(perMinute int) *limiterSet {
	return &limiterSet{limiters: make(map[string]*rate.Limiter), perMin: perMinute}
}

func (s *limiterSet) get(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.limiters[key]
	if !ok {
		l = rate.NewLimiter(rate.Every(time.Minute/time.Duration(s.perMin)), s.perMin)
		s.limiters[key] = l
	}
	return l
}

// rateLimit limits requests per authenticated user, falling back to the
// client IP. A non-positive limit disables it.
func rateLimit(perMinute int, logger *zap.Logger) gin.HandlerFunc {
	if perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	set := newLimiterSet(perMinute)

	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if uid, ok := c.Get(ctxUserID); ok {
			key = "user:" + strconv.FormatInt(uid.(int64), 10)
		}

		if !set.get(key).Allow() {
			logger.Warn("rate limit exceeded", zap.String("caller", key))
			abortWithMessage(c, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}
		c.Next()
	}
}

// abortWithMessage ends the request with the error body the client parses.
func abortWithMessage(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"message": msg})
}
