// Package props reads and writes flat KEY=VALUE snapshots.
//
// A Snapshot remembers the order keys were first seen so that writing a
// loaded snapshot back out keeps untouched keys where they were. The package
// knows nothing about versions; it only stores strings.
package props

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Snapshot is an ordered set of key/value pairs.
// The zero value is not usable; use New or Load.
type Snapshot struct {
	keys   []string
	values map[string]string
}

// New returns an empty snapshot.
func New() *Snapshot {
	return &Snapshot{values: make(map[string]string)}
}

// Load parses key=value lines from r.
// Blank lines and lines starting with '#' or '!' are skipped.
// A line without '=' is stored as a key with an empty value.
// A repeated key keeps its first position and takes the last value.
// Lines may be of any length and end in LF or CRLF; a leading UTF-8 byte
// order mark is dropped.
func Load(r io.Reader) (*Snapshot, error) {
	s := New()
	br := bufio.NewReader(r)
	first := true
	for {
		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("failed to read snapshot: %w", err)
		}
		if first {
			line = strings.TrimPrefix(line, bom)
			first = false
		}
		s.parseLine(line)
		if err == io.EOF {
			return s, nil
		}
	}
}

const bom = "\uFEFF"

func (s *Snapshot) parseLine(line string) {
	line = strings.TrimSpace(line)
	if line == "" || line[0] == '#' || line[0] == '!' {
		return
	}
	key, value, _ := strings.Cut(line, "=")
	key = strings.TrimSpace(key)
	if key == "" {
		return
	}
	s.Set(key, strings.TrimSpace(value))
}

// Get returns the raw value for key.
func (s *Snapshot) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Set stores value under key. New keys are appended.
func (s *Snapshot) Set(key, value string) {
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
}

// Has reports whether key is present.
func (s *Snapshot) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

// Keys returns the keys in insertion order.
func (s *Snapshot) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Len returns the number of entries.
func (s *Snapshot) Len() int {
	return len(s.keys)
}

// Clone returns an independent copy.
func (s *Snapshot) Clone() *Snapshot {
	c := &Snapshot{
		keys:   make([]string, len(s.keys)),
		values: make(map[string]string, len(s.values)),
	}
	copy(c.keys, s.keys)
	for k, v := range s.values {
		c.values[k] = v
	}
	return c
}

// Int returns the value of key as a non-negative integer.
// It returns def when the key is absent, the value does not parse, or the
// parsed value is negative.
func (s *Snapshot) Int(key string, def int) int {
	raw, ok := s.values[key]
	if !ok {
		return def
	}
	n, ok := ParseInt(raw)
	if !ok {
		return def
	}
	return n
}

// ParseInt parses a non-negative decimal integer, ignoring surrounding space.
func ParseInt(raw string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// WriteTo writes every entry as a key=value line in insertion order.
func (s *Snapshot) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var total int64
	for _, k := range s.keys {
		n, err := fmt.Fprintf(bw, "%s=%s\n", k, s.values[k])
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, bw.Flush()
}

// String renders the snapshot in file form.
func (s *Snapshot) String() string {
	var sb strings.Builder
	_, _ = s.WriteTo(&sb)
	return sb.String()
}
