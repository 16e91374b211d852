package vault

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"stride/internal/platform/clock"

	"gopkg.in/yaml.v3"
)

// fence delimits the metadata block at the top of a note
const fence = "---"

// entry is one key: value line, raw value kept verbatim so unknown keys
// round-trip byte for byte
type entry struct {
	key string
	raw string
}

// Metadata is the ordered key/value header of a note
type Metadata struct {
	entries []entry
}

// Keys returns the keys in file order
func (m *Metadata) Keys() []string {
	out := make([]string, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.key
	}
	return out
}

// Has reports whether key is present
func (m *Metadata) Has(key string) bool {
	_, ok := m.lookup(key)
	return ok
}

func (m *Metadata) lookup(key string) (string, bool) {
	for _, e := range m.entries {
		if e.key == key {
			return e.raw, true
		}
	}
	return "", false
}

// String returns the raw scalar for key
func (m *Metadata) String(key string) (string, bool) {
	raw, ok := m.lookup(key)
	if !ok {
		return "", false
	}
	var s string
	if err := yaml.Unmarshal([]byte(raw), &s); err != nil {
		return strings.TrimSpace(raw), true
	}
	return s, true
}

// Bool decodes key as a YAML boolean
func (m *Metadata) Bool(key string) (bool, bool) {
	raw, ok := m.lookup(key)
	if !ok {
		return false, false
	}
	var b bool
	if err := yaml.Unmarshal([]byte(raw), &b); err != nil {
		return false, false
	}
	return b, true
}

// Int decodes key as an integer
func (m *Metadata) Int(key string) (int, bool) {
	raw, ok := m.lookup(key)
	if !ok {
		return 0, false
	}
	var n int
	if err := yaml.Unmarshal([]byte(raw), &n); err != nil {
		return 0, false
	}
	return n, true
}

// Float decodes key as a float
func (m *Metadata) Float(key string) (float64, bool) {
	raw, ok := m.lookup(key)
	if !ok {
		return 0, false
	}
	var f float64
	if err := yaml.Unmarshal([]byte(raw), &f); err != nil {
		return 0, false
	}
	return f, true
}

// Date decodes key as a YYYY-MM-DD date
func (m *Metadata) Date(key string) (clock.Date, bool) {
	s, ok := m.String(key)
	if !ok || s == "" {
		return clock.Date{}, false
	}
	d, err := clock.ParseDate(s)
	if err != nil {
		return clock.Date{}, false
	}
	return d, true
}

// set updates key in place or appends it, keeping file order stable
func (m *Metadata) set(key, raw string) {
	for i, e := range m.entries {
		if e.key == key {
			m.entries[i].raw = raw
			return
		}
	}
	m.entries = append(m.entries, entry{key: key, raw: raw})
}

// Scalar is a typed front-matter value with a canonical encoding
type Scalar struct{ raw string }

// Str encodes a string scalar, quoting only when YAML requires it
func Str(s string) Scalar {
	if needsQuoting(s) {
		b, _ := yaml.Marshal(s)
		return Scalar{raw: strings.TrimRight(string(b), "\n")}
	}
	return Scalar{raw: s}
}

// Bool encodes a lowercase true/false
func Bool(b bool) Scalar { return Scalar{raw: strconv.FormatBool(b)} }

// Int encodes an integer
func Int(n int) Scalar { return Scalar{raw: strconv.Itoa(n)} }

// Float encodes with at most two decimal places
func Float(f float64) Scalar {
	rounded := math.Round(f*100) / 100
	return Scalar{raw: strconv.FormatFloat(rounded, 'f', -1, 64)}
}

// Date encodes as YYYY-MM-DD
func Date(d clock.Date) Scalar { return Scalar{raw: d.String()} }

func needsQuoting(s string) bool {
	if s == "" {
		return true
	}
	if strings.ContainsAny(s, ":#{}[]&*!|>'\"%@`\n") {
		return true
	}
	switch strings.ToLower(s) {
	case "true", "false", "null", "yes", "no", "~":
		return true
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return true
	}
	return s != strings.TrimSpace(s)
}

// Patch is the set of keys UpdateMetadata rewrites; all other keys and the
// body are preserved exactly
type Patch map[string]Scalar

// parseNote splits raw file contents into metadata and body. Files without a
// leading fence have empty metadata and the whole content as body
func parseNote(contents string) (*Metadata, string) {
	md := &Metadata{}
	if !strings.HasPrefix(contents, fence+"\n") && contents != fence {
		return md, contents
	}
	rest := strings.TrimPrefix(contents, fence+"\n")
	end := closingFence(rest)
	if end < 0 {
		// unterminated fence: treat the whole file as body
		return &Metadata{}, contents
	}
	header := rest[:end]
	body := rest[end+len("\n"+fence):]
	// the closing fence line may be followed by a newline that belongs to it
	body = strings.TrimPrefix(body, "\n")

	for _, line := range strings.Split(header, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		raw := strings.TrimSpace(line[idx+1:])
		if key == "" {
			continue
		}
		md.entries = append(md.entries, entry{key: key, raw: raw})
	}
	return md, body
}

// closingFence finds the offset of "\n---" where the fence is a whole line,
// so a "----" horizontal rule in the header cannot terminate it early
func closingFence(s string) int {
	from := 0
	for {
		idx := strings.Index(s[from:], "\n"+fence)
		if idx < 0 {
			return -1
		}
		idx += from
		after := idx + len("\n"+fence)
		if after == len(s) || s[after] == '\n' {
			return idx
		}
		from = idx + 1
	}
}

// renderNote serialises metadata and body back into file contents
func renderNote(md *Metadata, body string) string {
	var sb strings.Builder
	sb.WriteString(fence)
	sb.WriteByte('\n')
	for _, e := range md.entries {
		fmt.Fprintf(&sb, "%s: %s\n", e.key, e.raw)
	}
	sb.WriteString(fence)
	sb.WriteByte('\n')
	sb.WriteString(body)
	return sb.String()
}
