package form

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestData(t *testing.T) {
	var d Data
	d.Add("name", "Ada")
	d.AddFile("photo", &File{Name: "me.png", Data: []byte("png")})
	d.Add("tag", "one")
	d.Add("tag", "two")

	if got := d.Get("name"); got != "Ada" {
		t.Errorf("Get(name) = %q, want Ada", got)
	}
	if got := d.Get("photo"); got != "" {
		t.Errorf("Get(photo) = %q, want empty for file field", got)
	}
	if got := d.Get("tag"); got != "one" {
		t.Errorf("Get(tag) = %q, want first value", got)
	}
	if f := d.File("photo"); f == nil || f.Size() != 3 {
		t.Errorf("File(photo) = %+v, want 3-byte file", f)
	}
	if f := d.File("name"); f != nil {
		t.Errorf("File(name) = %+v, want nil", f)
	}
	if diff := cmp.Diff([]string{"name", "photo", "tag"}, d.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
}

func TestFileSizeNil(t *testing.T) {
	var f *File
	if f.Size() != 0 {
		t.Errorf("nil File Size() = %d, want 0", f.Size())
	}
}

func TestParseAssignment(t *testing.T) {
	tests := []struct {
		in        string
		wantName  string
		wantValue string
		wantOK    bool
	}{
		{"name=Ada", "name", "Ada", true},
		{"message=a=b", "message", "a=b", true},
		{" email =x@y.z", "email", "x@y.z", true},
		{"empty=", "empty", "", true},
		{"novalue", "", "", false},
		{"=value", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			name, value, ok := ParseAssignment(tt.in)
			if name != tt.wantName || value != tt.wantValue || ok != tt.wantOK {
				t.Errorf("ParseAssignment(%q) = (%q, %q, %v), want (%q, %q, %v)",
					tt.in, name, value, ok, tt.wantName, tt.wantValue, tt.wantOK)
			}
		})
	}
}
