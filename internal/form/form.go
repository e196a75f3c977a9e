// Package form holds the serialized contents of an HTML form: an ordered list
// of named fields, each carrying either a string value or a file attachment.
package form

import "strings"

// File is a file attachment selected in a file input.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size returns the file size in bytes.
func (f *File) Size() int64 {
	if f == nil {
		return 0
	}
	return int64(len(f.Data))
}

// Field is one entry of a form submission. File is nil for plain values.
type Field struct {
	Name  string
	Value string
	File  *File
}

// IsFile reports whether the field carries an attachment.
func (f Field) IsFile() bool {
	return f.File != nil
}

// Data is an ordered form submission. Names may repeat.
type Data []Field

// Add appends a plain value.
func (d *Data) Add(name, value string) {
	*d = append(*d, Field{Name: name, Value: value})
}

// AddFile appends a file attachment.
func (d *Data) AddFile(name string, file *File) {
	*d = append(*d, Field{Name: name, File: file})
}

// Get returns the first plain value for name, or "".
func (d Data) Get(name string) string {
	for _, f := range d {
		if f.Name == name && !f.IsFile() {
			return f.Value
		}
	}
	return ""
}

// File returns the first attachment for name, or nil.
func (d Data) File(name string) *File {
	for _, f := range d {
		if f.Name == name && f.IsFile() {
			return f.File
		}
	}
	return nil
}

// Names returns the field names in order, without duplicates.
func (d Data) Names() []string {
	seen := make(map[string]bool, len(d))
	names := make([]string, 0, len(d))
	for _, f := range d {
		if !seen[f.Name] {
			seen[f.Name] = true
			names = append(names, f.Name)
		}
	}
	return names
}

// ParseAssignment splits "name=value" as used by the CLI --field flag.
func ParseAssignment(s string) (name, value string, ok bool) {
	name, value, ok = strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", "", false
	}
	return name, value, true
}
