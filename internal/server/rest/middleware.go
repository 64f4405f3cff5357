package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/cmsauth/internal/common"
	"github.com/dmitrijs2005/cmsauth/internal/server/auth"
	"github.com/gin-gonic/gin"
)

// requireAuth asks the gate for a verdict and either forwards the request
// with the caller's identity attached or answers 401 without running any
// later handler.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		v := s.gate.Check(c.GetHeader(common.AuthorizationHeaderName))
		if !v.Allowed {
			s.metrics.AuthVerdictsTotal.WithLabelValues("deny").Inc()
			s.logger.Warn(ctx, "request denied", "method", c.Request.Method, "path", c.Request.URL.Path, "reason", v.Reason)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": common.PublicMessage(v.Reason)})
			return
		}

		s.metrics.AuthVerdictsTotal.WithLabelValues("allow").Inc()
		c.Request = c.Request.WithContext(auth.WithIdentity(ctx, v.Identity))
		c.Next()
	}
}

// IdentityFrom returns the caller established by the auth middleware.
func IdentityFrom(c *gin.Context) (auth.Identity, bool) {
	return auth.IdentityFromContext(c.Request.Context())
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}

func (s *Server) instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		s.metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		s.metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
