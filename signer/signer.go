// Package signer mints media URLs: public read URLs composed from a
// configured base, and opaque write tickets for the upload fallback path.
//
// Neither form is cryptographically time-boxed. Read URLs inherit the
// lifetime management of the object store's public bucket; write tickets
// embed their TTL for the consuming upload service to enforce. Callers
// must branch on URL shape: an absolute http(s) URL is uploaded to (or
// fetched) directly, a ticket:// URL goes through the fallback path.
package signer

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// TicketScheme marks a write URL as an opaque upload ticket rather than
// a directly usable endpoint.
const TicketScheme = "ticket"

// Config holds the signer's capabilities. An empty PublicBase disables
// read URLs; write tickets are always available.
type Config struct {
	PublicBase string
}

type Signer struct {
	publicBase string
}

func New(cfg Config) *Signer {
	return &Signer{publicBase: strings.TrimRight(cfg.PublicBase, "/")}
}

// ReadURL composes the public URL for a storage key. Reports false when
// no public base is configured or the key is empty. The ttl is accepted
// for interface compatibility but not embedded: the composed URL is a
// plain public-bucket URL.
func (s *Signer) ReadURL(key string, _ time.Duration) (string, bool) {
	if s.publicBase == "" || key == "" {
		return "", false
	}

	base, err := url.Parse(s.publicBase)
	if err != nil {
		return "", false
	}

	base.Path = strings.TrimRight(base.Path, "/") + "/" + strings.TrimLeft(key, "/")
	return base.String(), true
}

// WriteURL mints an opaque upload ticket embedding the key, content type
// and ttl. The ticket is not an uploadable endpoint; the client's upload
// path recognizes the ticket scheme and falls back accordingly.
func (s *Signer) WriteURL(key, contentType string, ttl time.Duration) string {
	q := url.Values{}
	q.Set("content_type", contentType)
	q.Set("ttl", strconv.Itoa(int(ttl.Seconds())))

	u := url.URL{
		Scheme:   TicketScheme,
		Host:     "upload",
		Path:     "/" + key,
		RawQuery: q.Encode(),
	}
	return u.String()
}
