package http

import (
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
)

// fileURIPath converts a file URI to a local path. On Windows the leading
// slash of "/C:/dir" is dropped.
func fileURIPath(u *url.URL) string {
	p := u.Path
	if runtime.GOOS == "windows" && len(p) > 2 && p[0] == '/' && p[2] == ':' {
		p = strings.TrimPrefix(p, "/")
	}
	return filepath.FromSlash(p)
}
