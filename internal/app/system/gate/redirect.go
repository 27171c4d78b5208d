package gate

import (
	"net/url"
	"path"
	"strings"
)

// Admin area paths.
const (
	AdminRoot   = "/admin"
	LoginPath   = "/admin/login"
	LogoutPath  = "/admin/logout"
	DefaultPath = "/admin/dashboard"
)

// IsAdminPath reports whether p falls under the admin area. Both the raw and
// the cleaned form are checked so dot segments cannot step around the gate.
func IsAdminPath(p string) bool {
	return underAdmin(p) || underAdmin(path.Clean("/"+p))
}

func underAdmin(p string) bool {
	return p == AdminRoot || strings.HasPrefix(p, AdminRoot+"/")
}

// IsLoginPath reports whether p is the login page, with or without a
// trailing slash.
func IsLoginPath(p string) bool {
	return p == LoginPath || p == LoginPath+"/"
}

// SafeNext validates an untrusted return path. It returns the path (with its
// query string, if any) when it is an internal admin destination, and
// DefaultPath otherwise.
//
// raw is decoded once. Rejected: absent or undecodable values, anything with
// a scheme or host, backslashes, control characters, ".." segments, paths
// outside /admin/, and the login and logout pages.
func SafeNext(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultPath
	}

	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return DefaultPath
	}

	if strings.ContainsRune(decoded, '\\') || hasControl(decoded) {
		return DefaultPath
	}
	if !strings.HasPrefix(decoded, AdminRoot+"/") {
		return DefaultPath
	}

	u, err := url.Parse(decoded)
	if err != nil || u.Scheme != "" || u.Host != "" || u.Opaque != "" || u.User != nil {
		return DefaultPath
	}
	if !strings.HasPrefix(u.Path, AdminRoot+"/") {
		return DefaultPath
	}
	for _, seg := range strings.Split(u.Path, "/") {
		if seg == ".." {
			return DefaultPath
		}
	}

	clean := path.Clean(u.Path)
	if clean == LoginPath || clean == LogoutPath {
		return DefaultPath
	}

	target := u.EscapedPath()
	if u.RawQuery != "" {
		target += "?" + u.RawQuery
	}
	return target
}

func hasControl(s string) bool {
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			return true
		}
	}
	return false
}
