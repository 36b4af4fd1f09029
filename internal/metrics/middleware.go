package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// scrapeRoute is served by promhttp and is not counted against itself.
const scrapeRoute = "/metrics"

// HTTPMetrics is Gin middleware that counts checklist API traffic. Requests are
// labeled by route group ("api", "health"), the matched route pattern and the
// response status; unmatched paths share the "unknown" route so label
// cardinality stays bounded. Prometheus scrapes are not recorded.
func HTTPMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == scrapeRoute {
			c.Next()
			return
		}
		if route == "" {
			route = "unknown"
		}
		group := RouteGroup(route)

		inFlight := HTTPRequestsInFlight.WithLabelValues(group)
		inFlight.Inc()
		defer inFlight.Dec()

		start := time.Now()
		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		HTTPRequestsTotal.WithLabelValues(c.Request.Method, group, route, status).Inc()
		HTTPRequestDuration.WithLabelValues(group, route).Observe(time.Since(start).Seconds())
		if size := c.Writer.Size(); size > 0 {
			HTTPResponseBytes.WithLabelValues(group).Observe(float64(size))
		}
	}
}

// RouteGroup is the first segment of a route pattern: "/api/imports/:id" is
// "api", "/health" is "health". Patterns that start with a parameter or are
// empty map to "unknown".
func RouteGroup(route string) string {
	segment, _, _ := strings.Cut(strings.TrimPrefix(route, "/"), "/")
	if segment == "" || strings.HasPrefix(segment, ":") || strings.HasPrefix(segment, "*") {
		return "unknown"
	}
	return segment
}
