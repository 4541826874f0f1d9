package web

import (
	"net"
	"net/http"
	"strings"

	"github.com/starford/hotlines/internal/action"
)

// ShareCookie is set by the page script when navigator.share exists.
const ShareCookie = "share"

// DefaultTrustedHosts are treated as secure contexts over plain HTTP, as browsers do.
var DefaultTrustedHosts = []string{"localhost", "127.0.0.1", "::1"}

// shareProbe reports whether the browser behind r can open a share sheet:
// it must advertise support and the page must be a secure context.
func shareProbe(r *http.Request, trusted []string) action.ShareProbe {
	return action.ProbeFunc(func() bool {
		c, err := r.Cookie(ShareCookie)
		if err != nil || c.Value != "1" {
			return false
		}
		return secureContext(r, trusted)
	})
}

func secureContext(r *http.Request, trusted []string) bool {
	if r.TLS != nil {
		return true
	}
	if strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		return true
	}
	host := r.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")
	for _, t := range trusted {
		if strings.EqualFold(host, t) {
			return true
		}
	}
	return false
}
