package bridge

import (
	"net/url"
	"strings"

	"github.com/Coubiac/signstamp/internal/logger"
)

// OpenRequest is an OS-level "open with" notification: plain paths and/or URLs.
type OpenRequest struct {
	Paths []string `json:"paths"`
	URLs  []string `json:"urls"`
}

// Candidates returns the request's paths followed by the file-system paths of its file URLs.
// Non-file and remote URLs are dropped.
func (r OpenRequest) Candidates() []string {
	out := make([]string, 0, len(r.Paths)+len(r.URLs))
	out = append(out, r.Paths...)
	for _, raw := range r.URLs {
		p, ok := FileURLToPath(raw)
		if !ok {
			logger.WithComponent("bridge").Debugf("dropping url %q: not a local file url", raw)
			continue
		}
		out = append(out, p)
	}
	return out
}

// FileURLToPath converts a local file:// URL to a path.
func FileURLToPath(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil || !strings.EqualFold(u.Scheme, "file") {
		return "", false
	}
	if u.Host != "" && !strings.EqualFold(u.Host, "localhost") {
		return "", false
	}
	p := u.Path
	if p == "" {
		return "", false
	}
	// file:///C:/dir/a.pdf
	if len(p) >= 3 && p[0] == '/' && p[2] == ':' && isASCIILetter(p[1]) {
		p = p[1:]
	}
	return p, true
}

func isASCIILetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// Handle dispatches every candidate of the request and returns how many were forwarded.
func (b *Bridge) Handle(req OpenRequest) int {
	return b.DispatchAll(req.Candidates())
}
