// Package identity holds the two tokens the remote API uses to scope and
// attribute data to one site deployment.
package identity

import (
	"fmt"
	"strings"
)

const (
	HeaderStudentNumber = "student_number"
	HeaderZoneID        = "uqcloud_zone_id"
)

// Identity is the site/student identifier plus the zone identifier.
type Identity struct {
	StudentNumber string `json:"student_number" yaml:"student_number"`
	ZoneID        string `json:"zone_id" yaml:"zone_id"`
}

// Validate checks that both tokens are present.
func (id Identity) Validate() error {
	if strings.TrimSpace(id.StudentNumber) == "" {
		return fmt.Errorf("student number is required")
	}
	if strings.TrimSpace(id.ZoneID) == "" {
		return fmt.Errorf("zone ID is required")
	}
	return nil
}

// Headers returns a fresh map with both identity headers set.
func (id Identity) Headers() map[string]string {
	return map[string]string{
		HeaderStudentNumber: id.StudentNumber,
		HeaderZoneID:        id.ZoneID,
	}
}

// Merge returns extra with the identity headers applied on top, so callers
// cannot drop or override them.
func (id Identity) Merge(extra map[string]string) map[string]string {
	out := make(map[string]string, len(extra)+2)
	for k, v := range extra {
		out[k] = v
	}
	for k, v := range id.Headers() {
		out[k] = v
	}
	return out
}
