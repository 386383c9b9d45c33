package normalise

import (
	"net/url"
	"path"
	"strings"

	"github.com/custodia-labs/caseforest/internal/core/domain"
)

const (
	storageScheme      = "gs://"
	storageBrowsableAt = "https://storage.cloud.google.com/"
)

// BrowsableLink rewrites a storage object reference into a URL a browser
// can open. Other links pass through; an empty link becomes the placeholder.
func BrowsableLink(link string) string {
	link = strings.TrimSpace(link)
	switch {
	case link == "":
		return domain.PlaceholderLink
	case strings.HasPrefix(link, storageScheme):
		return storageBrowsableAt + strings.TrimPrefix(link, storageScheme)
	default:
		return link
	}
}

// FilenameStem returns the last path segment of a link without its
// extension, or "" when the link has no usable segment.
func FilenameStem(link string) string {
	p := link
	if u, err := url.Parse(link); err == nil {
		p = u.Path
	}
	if unescaped, err := url.PathUnescape(p); err == nil {
		p = unescaped
	}
	base := path.Base(p)
	if base == "." || base == "/" {
		return ""
	}
	stem := strings.TrimSuffix(base, path.Ext(base))
	return strings.TrimSpace(stem)
}
