package models

import (
	"encoding/json"
	"fmt"
)

// Severity orders alert levels so that channel policies ("only CRITICAL
// gets SMS") compare with < and >= instead of string equality.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "CRITICAL"
	case SeverityWarning:
		return "WARNING"
	default:
		return "INFO"
	}
}

// AtLeast reports whether s is at or above the given level.
func (s Severity) AtLeast(min Severity) bool {
	return s >= min
}

// ParseSeverity maps the wire/storage form back to a Severity. Unknown
// values are an error rather than a silent INFO.
func ParseSeverity(v string) (Severity, error) {
	switch v {
	case "INFO":
		return SeverityInfo, nil
	case "WARNING":
		return SeverityWarning, nil
	case "CRITICAL":
		return SeverityCritical, nil
	}
	return SeverityInfo, fmt.Errorf("unknown severity %q", v)
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Severity) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseSeverity(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
