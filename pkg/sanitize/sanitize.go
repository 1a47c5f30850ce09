// Package sanitize strips executable content from user-submitted HTML
// before it reaches storage.
package sanitize

import (
	"github.com/microcosm-cc/bluemonday"
)

var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	// UGC policy: common formatting tags survive, scripts and event
	// handlers do not.
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(true)
	return p
}

// HTML returns html with script content and unsafe attributes removed.
func HTML(html string) string {
	return policy.Sanitize(html)
}
