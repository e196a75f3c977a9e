package page

import (
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Event types dispatched by controllers and behaviors.
const (
	Click   = "click"
	Submit  = "submit"
	Change  = "change"
	KeyDown = "keydown"
	Input   = "input"
)

// Event is a DOM event travelling from Target up to the document.
type Event struct {
	Type string
	// Key is set for keydown events ("Escape", "Enter").
	Key string

	// Target is the element the event was dispatched on.
	Target *goquery.Selection
	// CurrentTarget is the element whose listener is running.
	CurrentTarget *goquery.Selection

	defaultPrevented bool
	stopped          bool
}

// NewEvent creates an event of the given type.
func NewEvent(typ string) *Event {
	return &Event{Type: typ}
}

// PreventDefault cancels the default action (form submission, link navigation).
func (e *Event) PreventDefault() {
	e.defaultPrevented = true
}

// DefaultPrevented reports whether a listener called PreventDefault.
func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}

// StopPropagation stops the event after the current element's listeners.
func (e *Event) StopPropagation() {
	e.stopped = true
}

// Handler receives dispatched events.
type Handler func(ev *Event)

// Teardown removes whatever a registration installed. Calling it twice is safe.
type Teardown func()

type listener struct {
	id      int
	handler Handler
}

// On registers handler for events of typ on every element of sel.
func (c *Context) On(sel *goquery.Selection, typ string, handler Handler) Teardown {
	c.nextID++
	id := c.nextID

	nodes := append([]*html.Node(nil), sel.Nodes...)
	for _, n := range nodes {
		byType := c.handlers[n]
		if byType == nil {
			byType = make(map[string][]*listener)
			c.handlers[n] = byType
		}
		byType[typ] = append(byType[typ], &listener{id: id, handler: handler})
	}

	return func() {
		for _, n := range nodes {
			byType := c.handlers[n]
			list := byType[typ]
			for i, l := range list {
				if l.id == id {
					byType[typ] = append(list[:i:i], list[i+1:]...)
					break
				}
			}
			if len(byType[typ]) == 0 {
				delete(byType, typ)
			}
			if len(byType) == 0 {
				delete(c.handlers, n)
			}
		}
	}
}

// Listeners counts the listeners registered for typ on the first element of sel.
func (c *Context) Listeners(sel *goquery.Selection, typ string) int {
	if sel.Length() == 0 {
		return 0
	}
	return len(c.handlers[sel.Get(0)][typ])
}

// Dispatch delivers ev to the first element of target and then to each
// ancestor up to the document. It reports whether the default action should
// run, i.e. no listener called PreventDefault.
func (c *Context) Dispatch(target *goquery.Selection, ev *Event) bool {
	if target.Length() == 0 {
		return true
	}
	n := target.Get(0)
	ev.Target = c.selectionOf(n)

	for cur := n; cur != nil && !ev.stopped; cur = cur.Parent {
		list := c.handlers[cur][ev.Type]
		if len(list) == 0 {
			continue
		}
		ev.CurrentTarget = c.selectionOf(cur)
		for _, l := range append([]*listener(nil), list...) {
			l.handler(ev)
		}
	}
	ev.CurrentTarget = nil

	return !ev.defaultPrevented
}

// ClickOn dispatches a click. Disabled elements receive nothing. A click on a
// submit button that is not prevented submits its form.
func (c *Context) ClickOn(sel *goquery.Selection) bool {
	if sel.Length() == 0 || Disabled(sel) {
		return false
	}
	ok := c.Dispatch(sel, NewEvent(Click))
	if ok && isSubmitButton(sel.First()) {
		if f := sel.First().Closest("form"); f.Length() > 0 {
			c.Dispatch(f, NewEvent(Submit))
		}
	}
	return ok
}

// SubmitForm dispatches submit on the first form in sel.
func (c *Context) SubmitForm(sel *goquery.Selection) bool {
	return c.Dispatch(sel, NewEvent(Submit))
}

// PressKey dispatches a keydown with key on sel.
func (c *Context) PressKey(sel *goquery.Selection, key string) bool {
	ev := NewEvent(KeyDown)
	ev.Key = key
	return c.Dispatch(sel, ev)
}

// ChangeOn dispatches a change event on sel.
func (c *Context) ChangeOn(sel *goquery.Selection) bool {
	return c.Dispatch(sel, NewEvent(Change))
}

func isSubmitButton(s *goquery.Selection) bool {
	switch goquery.NodeName(s) {
	case "button":
		t := s.AttrOr("type", "submit")
		return t == "" || t == "submit"
	case "input":
		return s.AttrOr("type", "") == "submit"
	}
	return false
}

// selectionOf wraps n, preferring a selection rooted in the page document.
func (c *Context) selectionOf(n *html.Node) *goquery.Selection {
	if n == c.doc.Get(0) {
		return c.doc.Selection
	}
	if s := c.doc.FindNodes(n); s.Length() > 0 {
		return s
	}
	return goquery.NewDocumentFromNode(n).Selection
}
