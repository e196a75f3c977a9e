// Package cards renders API items as HTML cards: community members on the
// reflective page and discussion posts on the connect page.
//
// Item fields are escaped before templating and every card passes through a
// bluemonday policy that only admits the card elements, so markup stored in
// the API cannot reach the page.
package cards

import (
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/pfrederiksen/community-site/internal/datefmt"
	"github.com/pfrederiksen/community-site/internal/listing"
)

const (
	// DefaultAvatar is shown for members without a photo.
	DefaultAvatar = "assets/images/default-avatar.png"

	// NoMessage is shown for members who left no message.
	NoMessage = "No message provided."
)

var (
	cardPolicyOnce sync.Once
	cardPolicy     *bluemonday.Policy
)

// Renderer builds card markup. The zero value uses time.Now and the local zone.
type Renderer struct {
	Now      func() time.Time
	Location *time.Location
}

func (r Renderer) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Member renders a community member card.
func (r Renderer) Member(it listing.Item) string {
	name := html.EscapeString(it.String("name"))

	photo := strings.TrimSpace(it.String("photo"))
	if photo == "" {
		photo = DefaultAvatar
	}

	message := it.String("message")
	if message == "" {
		message = NoMessage
	}

	markup := fmt.Sprintf(`<article class="community-card">
  <div class="card-image">
    <img src="%s" alt="Photo of %s" loading="lazy"/>
  </div>
  <div class="card-content">
    <h3 class="card-title">%s</h3>
    <p class="card-message">%s</p>
    <div class="card-meta">
      <span class="member-date">Joined: %s</span>
    </div>
  </div>
</article>`,
		html.EscapeString(photo), name, name,
		html.EscapeString(message),
		html.EscapeString(datefmt.Long(it.String("created_at"), r.Location)),
	)
	return Sanitize(markup)
}

// Discussion renders a discussion post card.
func (r Renderer) Discussion(it listing.Item) string {
	markup := fmt.Sprintf(`<article class="discussion-item">
  <h3 class="discussion-title">%s</h3>
  <p class="discussion-excerpt">%s</p>
  <p class="discussion-meta">Posted by %s • %s</p>
</article>`,
		html.EscapeString(it.String("chat_post_title")),
		html.EscapeString(it.String("chat_post_content")),
		html.EscapeString(it.String("person_name")),
		html.EscapeString(datefmt.Relative(it.String("chat_date_time"), r.now(), r.Location)),
	)
	return Sanitize(markup)
}

// Sanitize strips everything outside the card vocabulary.
func Sanitize(markup string) string {
	return strings.TrimSpace(cardSanitizer().Sanitize(markup))
}

func cardSanitizer() *bluemonday.Policy {
	cardPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("article", "div", "h3", "p", "span")
		policy.AllowAttrs("class").OnElements("article", "div", "h3", "p", "span", "img")

		policy.AllowImages()
		policy.AllowDataURIImages()
		policy.AllowAttrs("alt").OnElements("img")
		policy.AllowAttrs("loading").Matching(bluemonday.SpaceSeparatedTokens).OnElements("img")
		policy.AllowURLSchemes("http", "https")
		policy.AllowRelativeURLs(true)

		cardPolicy = policy
	})
	return cardPolicy
}
