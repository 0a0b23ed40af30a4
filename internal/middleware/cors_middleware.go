package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	corsAllowHeaders  = "Authorization, Content-Type, Accept, Origin, Cache-Control, Last-Event-ID, X-Requested-With"
	corsAllowMethods  = "GET, POST, PUT, PATCH, OPTIONS"
	corsExposeHeaders = "X-Request-Id"
)

// originAllowlist matches origin hosts exactly or, for "*.example.com"
// entries, any subdomain of example.com.
type originAllowlist struct {
	exact    map[string]bool
	suffixes []string
}

func newOriginAllowlist(hosts []string) originAllowlist {
	a := originAllowlist{exact: make(map[string]bool, len(hosts))}
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		switch {
		case h == "":
		case strings.HasPrefix(h, "*."):
			a.suffixes = append(a.suffixes, h[1:])
		default:
			a.exact[h] = true
		}
	}
	return a
}

func (a originAllowlist) allows(host string) bool {
	if host == "" {
		return false
	}
	if a.exact[host] {
		return true
	}
	for _, s := range a.suffixes {
		if strings.HasSuffix(host, s) {
			return true
		}
	}
	return false
}

// originHost returns the lower-cased host of an origin URL without the
// default :80/:443 port, or "" when the origin is not a URL.
func originHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	host := strings.ToLower(u.Host)
	if h, port, ok := strings.Cut(host, ":"); ok && (port == "443" || port == "80") {
		host = h
	}
	return host
}

// requestOrigin prefers the Origin header and falls back to the Referer's
// scheme and host, which EventSource requests from some browsers only send.
func requestOrigin(r *http.Request) string {
	if o := r.Header.Get("Origin"); o != "" {
		return strings.TrimSpace(strings.TrimSuffix(o, "/"))
	}
	if ref := r.Header.Get("Referer"); ref != "" {
		if u, err := url.Parse(ref); err == nil && u.Scheme != "" && u.Host != "" {
			return u.Scheme + "://" + u.Host
		}
	}
	return ""
}

// CORSMiddleware reflects allowed origins and answers preflight requests.
func CORSMiddleware(hosts []string) gin.HandlerFunc {
	allowed := newOriginAllowlist(hosts)

	return func(c *gin.Context) {
		c.Header("Vary", "Origin")
		origin := requestOrigin(c.Request)
		if allowed.allows(originHost(origin)) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Expose-Headers", corsExposeHeaders)
		}

		if c.Request.Method == http.MethodOptions {
			c.Header("Access-Control-Allow-Headers", corsAllowHeaders)
			c.Header("Access-Control-Allow-Methods", corsAllowMethods)
			c.Header("Access-Control-Max-Age", "86400")
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
