package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-logr/logr"
	"golang.org/x/time/rate"
)

// newLimiter returns a limiter for requestsPerSecond; zero or less disables
// limiting.
func newLimiter(requestsPerSecond float64, burst int) *rate.Limiter {
	if requestsPerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}

func rateLimit(l *rate.Limiter, m *metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow() {
			m.throttled.Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, failure("too many requests"))
			return
		}
		c.Next()
	}
}

// observe records request metrics and logs every request at V(1).
func observe(log logr.Logger, m *metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		status := c.Writer.Status()
		m.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		m.latency.WithLabelValues(route).Observe(elapsed.Seconds())

		log.V(1).Info("request",
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"bytes", c.Writer.Size(),
			"duration", elapsed.String(),
		)
	}
}

// recovery turns handler panics into a 500 with the standard failure body.
func recovery(log logr.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error(nil, "handler panic", "route", c.FullPath(), "panic", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, failure("internal error"))
	})
}
