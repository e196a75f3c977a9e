package page

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html"

	"github.com/pfrederiksen/community-site/internal/apierr"
	"github.com/pfrederiksen/community-site/internal/form"
)

// Context is the DOM of one page plus its interactive state.
type Context struct {
	doc *goquery.Document

	values   map[*html.Node]string
	checked  map[*html.Node]bool
	files    map[*html.Node][]*form.File
	handlers map[*html.Node]map[string][]*listener

	focused  *html.Node
	scrolled []*html.Node
	alerts   []string

	nextID int
	mu     sync.Mutex
}

// New wraps a parsed document.
func New(doc *goquery.Document) *Context {
	return &Context{
		doc:      doc,
		values:   make(map[*html.Node]string),
		checked:  make(map[*html.Node]bool),
		files:    make(map[*html.Node][]*form.File),
		handlers: make(map[*html.Node]map[string][]*listener),
	}
}

// Load parses HTML from r.
func Load(r io.Reader) (*Context, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return New(doc), nil
}

// LoadString parses an HTML string.
func LoadString(s string) (*Context, error) {
	return Load(strings.NewReader(s))
}

// LoadFile parses the HTML file at path.
func LoadFile(path string) (*Context, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening page: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Fetch downloads and parses the page at url.
func Fetch(ctx context.Context, client *resty.Client, url string) (*Context, error) {
	resp, err := client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return nil, apierr.NewTransportError("fetching page", err)
	}
	body := resp.RawBody()
	defer body.Close()

	if !resp.IsSuccess() {
		return nil, apierr.NewAPIError(fmt.Sprintf("fetching page: unexpected status code: %d", resp.StatusCode()))
	}
	return Load(body)
}

// Document returns the document root. Listeners on it see every bubbling event.
func (c *Context) Document() *goquery.Selection {
	return c.doc.Selection
}

// Body returns the body element.
func (c *Context) Body() *goquery.Selection {
	return c.doc.Find("body").First()
}

// Find runs a CSS selector against the whole document.
func (c *Context) Find(selector string) *goquery.Selection {
	return c.doc.Find(selector)
}

// ByID returns the element with the given id, or an empty selection.
func (c *Context) ByID(id string) *goquery.Selection {
	return c.doc.FindMatcher(idMatcher(id)).First()
}

// Require returns the elements matching selector, or an ErrNotFoundElement
// error when there are none.
func (c *Context) Require(selector string) (*goquery.Selection, error) {
	sel := c.doc.Find(selector)
	if sel.Length() == 0 {
		return nil, apierr.NewNotFoundElement(selector)
	}
	return sel, nil
}

// Fragment parses markup into detached nodes that can be appended to the page.
func (c *Context) Fragment(markup string) *goquery.Selection {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + markup + "</body>"))
	if err != nil {
		return &goquery.Selection{}
	}
	return doc.Find("body").Children()
}

// Exclusive runs f while holding the page lock. Timer callbacks use it so
// they never interleave with an event being dispatched by the caller.
func (c *Context) Exclusive(f func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f()
}

// Focus moves focus to the first element of sel.
func (c *Context) Focus(sel *goquery.Selection) {
	if sel.Length() == 0 {
		return
	}
	c.focused = sel.Get(0)
}

// Focused returns the focused element, or an empty selection.
func (c *Context) Focused() *goquery.Selection {
	if c.focused == nil {
		return c.doc.FindNodes()
	}
	return c.doc.FindNodes(c.focused)
}

// ScrollTo records sel as scrolled into view.
func (c *Context) ScrollTo(sel *goquery.Selection) {
	if sel.Length() == 0 {
		return
	}
	c.scrolled = append(c.scrolled, sel.Get(0))
}

// Scrolled returns every element scrolled to, oldest first.
func (c *Context) Scrolled() []*goquery.Selection {
	out := make([]*goquery.Selection, 0, len(c.scrolled))
	for _, n := range c.scrolled {
		out = append(out, c.doc.FindNodes(n))
	}
	return out
}

// Alert records a message the page would show in a blocking dialog.
func (c *Context) Alert(msg string) {
	c.alerts = append(c.alerts, msg)
}

// Alerts returns every alert shown so far.
func (c *Context) Alerts() []string {
	return append([]string(nil), c.alerts...)
}

// SetStyle sets one inline style property on every element of sel.
// An empty value removes the property.
func SetStyle(sel *goquery.Selection, prop, value string) {
	sel.Each(func(_ int, s *goquery.Selection) {
		decls := parseStyle(s.AttrOr("style", ""))
		found := false
		out := decls[:0]
		for _, d := range decls {
			if d[0] == prop {
				found = true
				if value == "" {
					continue
				}
				d[1] = value
			}
			out = append(out, d)
		}
		if !found && value != "" {
			out = append(out, [2]string{prop, value})
		}
		if len(out) == 0 {
			s.RemoveAttr("style")
			return
		}
		parts := make([]string, 0, len(out))
		for _, d := range out {
			parts = append(parts, d[0]+": "+d[1])
		}
		s.SetAttr("style", strings.Join(parts, "; ")+";")
	})
}

// Style returns one inline style property of the first element of sel.
func Style(sel *goquery.Selection, prop string) string {
	for _, d := range parseStyle(sel.AttrOr("style", "")) {
		if d[0] == prop {
			return d[1]
		}
	}
	return ""
}

func parseStyle(style string) [][2]string {
	var out [][2]string
	for _, decl := range strings.Split(style, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		out = append(out, [2]string{name, strings.TrimSpace(value)})
	}
	return out
}

// HTML renders the page with current form state written back into the markup.
func (c *Context) HTML() (string, error) {
	restore := c.applyState()
	defer restore()
	return goquery.OuterHtml(c.doc.Selection)
}

type idMatcher string

func (m idMatcher) Match(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, a := range n.Attr {
		if a.Key == "id" && a.Val == string(m) {
			return true
		}
	}
	return false
}

func (m idMatcher) MatchAll(n *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if m.Match(n) {
			out = append(out, n)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return out
}

func (m idMatcher) Filter(nodes []*html.Node) []*html.Node {
	var out []*html.Node
	for _, n := range nodes {
		if m.Match(n) {
			out = append(out, n)
		}
	}
	return out
}
