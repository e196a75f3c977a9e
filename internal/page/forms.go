package page

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/pfrederiksen/community-site/internal/form"
)

const controlSelector = "input, textarea, select"

// Value returns the current value of the first form control in sel.
func (c *Context) Value(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	n := sel.Get(0)
	if v, ok := c.values[n]; ok {
		return v
	}
	return defaultValue(sel.First())
}

// SetValue sets the current value of every control in sel. The value
// attribute is left alone so Reset can restore it.
func (c *Context) SetValue(sel *goquery.Selection, value string) {
	for _, n := range sel.Nodes {
		c.values[n] = value
	}
}

// Checked reports whether the first checkbox or radio in sel is checked.
func (c *Context) Checked(sel *goquery.Selection) bool {
	if sel.Length() == 0 {
		return false
	}
	if v, ok := c.checked[sel.Get(0)]; ok {
		return v
	}
	_, ok := sel.First().Attr("checked")
	return ok
}

// SetChecked checks or unchecks every control in sel. Checking a radio
// unchecks the rest of its group.
func (c *Context) SetChecked(sel *goquery.Selection, checked bool) {
	sel.Each(func(_ int, s *goquery.Selection) {
		if checked && controlType(s) == "radio" {
			scope := s.Closest("form")
			if scope.Length() == 0 {
				scope = c.doc.Selection
			}
			name := s.AttrOr("name", "")
			scope.Find(`input[type="radio"]`).Each(func(_ int, r *goquery.Selection) {
				if r.AttrOr("name", "") == name {
					c.checked[r.Get(0)] = false
				}
			})
		}
		c.checked[s.Get(0)] = checked
	})
}

// Files returns the files selected in the first file input of sel.
func (c *Context) Files(sel *goquery.Selection) []*form.File {
	if sel.Length() == 0 {
		return nil
	}
	return c.files[sel.Get(0)]
}

// SetFiles selects files in every file input of sel.
func (c *Context) SetFiles(sel *goquery.Selection, files ...*form.File) {
	for _, n := range sel.Nodes {
		c.files[n] = files
		name := ""
		if len(files) > 0 && files[0] != nil {
			name = `C:\fakepath\` + files[0].Name
		}
		c.values[n] = name
	}
}

// ClearFiles empties the selection of every file input in sel.
func (c *Context) ClearFiles(sel *goquery.Selection) {
	for _, n := range sel.Nodes {
		delete(c.files, n)
		c.values[n] = ""
	}
}

// Reset restores every control inside the forms in sel to its default.
func (c *Context) Reset(sel *goquery.Selection) {
	sel.Find(controlSelector).Each(func(_ int, s *goquery.Selection) {
		n := s.Get(0)
		delete(c.values, n)
		delete(c.checked, n)
		delete(c.files, n)
	})
}

// Disabled reports whether the first element of sel has the disabled attribute.
func Disabled(sel *goquery.Selection) bool {
	_, ok := sel.Attr("disabled")
	return ok
}

// SetDisabled adds or removes the disabled attribute.
func SetDisabled(sel *goquery.Selection, disabled bool) {
	if disabled {
		sel.SetAttr("disabled", "")
	} else {
		sel.RemoveAttr("disabled")
	}
}

// FormData collects the successful controls of the first form in sel, in
// document order. Disabled controls, buttons and unchecked checkboxes or
// radios are skipped. File inputs contribute one field per selected file.
func (c *Context) FormData(sel *goquery.Selection) form.Data {
	var data form.Data
	sel.First().Find(controlSelector).Each(func(_ int, s *goquery.Selection) {
		name, ok := s.Attr("name")
		if !ok || name == "" || Disabled(s) {
			return
		}

		switch controlType(s) {
		case "submit", "button", "reset", "image":
			return
		case "checkbox", "radio":
			if !c.Checked(s) {
				return
			}
			data.Add(name, s.AttrOr("value", "on"))
		case "file":
			for _, f := range c.Files(s) {
				data.AddFile(name, f)
			}
		default:
			data.Add(name, c.Value(s))
		}
	})
	return data
}

// Fill sets controls of the first form in sel from data. Unknown names are ignored.
func (c *Context) Fill(sel *goquery.Selection, data form.Data) {
	f := sel.First()
	for _, field := range data {
		ctl := f.Find(controlSelector).FilterFunction(func(_ int, s *goquery.Selection) bool {
			return s.AttrOr("name", "") == field.Name
		})
		if ctl.Length() == 0 {
			continue
		}
		switch controlType(ctl) {
		case "file":
			if field.File != nil {
				c.SetFiles(ctl.First(), field.File)
			}
		case "checkbox", "radio":
			ctl.Each(func(_ int, s *goquery.Selection) {
				if s.AttrOr("value", "on") == field.Value {
					c.SetChecked(s, true)
				}
			})
		default:
			c.SetValue(ctl.First(), field.Value)
		}
	}
}

func controlType(s *goquery.Selection) string {
	switch goquery.NodeName(s) {
	case "textarea":
		return "textarea"
	case "select":
		return "select"
	}
	t := strings.ToLower(s.AttrOr("type", "text"))
	if t == "" {
		return "text"
	}
	return t
}

func defaultValue(s *goquery.Selection) string {
	switch controlType(s) {
	case "textarea":
		return s.Text()
	case "select":
		opt := s.Find("option[selected]").First()
		if opt.Length() == 0 {
			opt = s.Find("option").First()
		}
		if v, ok := opt.Attr("value"); ok {
			return v
		}
		return strings.TrimSpace(opt.Text())
	case "file":
		return ""
	case "checkbox", "radio":
		return s.AttrOr("value", "on")
	default:
		return s.AttrOr("value", "")
	}
}

// applyState writes current values into the markup and returns a function
// that puts the original markup back.
func (c *Context) applyState() func() {
	var undo []func()

	setAttr := func(n *html.Node, key, val string, present bool) {
		old, had := getAttr(n, key)
		if present {
			putAttr(n, key, val)
		} else {
			dropAttr(n, key)
		}
		undo = append(undo, func() {
			if had {
				putAttr(n, key, old)
			} else {
				dropAttr(n, key)
			}
		})
	}

	for n, v := range c.values {
		s := c.doc.FindNodes(n)
		switch controlType(s) {
		case "file", "checkbox", "radio", "select":
			continue
		case "textarea":
			old := s.Text()
			s.SetText(v)
			undo = append(undo, func() { s.SetText(old) })
		default:
			setAttr(n, "value", v, true)
		}
	}
	for n, checked := range c.checked {
		setAttr(n, "checked", "", checked)
	}

	return func() {
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i]()
		}
	}
}

func getAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func putAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func dropAttr(n *html.Node, key string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}
