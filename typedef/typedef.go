package typedef

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

var (
	ErrPathNameEmpty    = errors.New("path name cannot be empty")
	ErrUnknownForcedKey = errors.New("unknown forced key")
)

// ForcedKey is a movement input that is held while walking to a waypoint.
type ForcedKey string

const (
	KeyForward ForcedKey = "forward"
	KeyLeft    ForcedKey = "left"
	KeyBack    ForcedKey = "back"
	KeyRight   ForcedKey = "right"
)

// MovementKeys lists the forced keys in the order the editor shows them.
var MovementKeys = []ForcedKey{KeyForward, KeyLeft, KeyBack, KeyRight}

// Valid reports whether k is one of the four movement keys.
func (k ForcedKey) Valid() bool {
	switch k {
	case KeyForward, KeyLeft, KeyBack, KeyRight:
		return true
	}
	return false
}

// Position is a raw player position as reported by the game client.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Waypoint is a block position plus the movement keys forced while travelling to it.
type Waypoint struct {
	X          int         `json:"x"`
	Y          int         `json:"y"`
	Z          int         `json:"z"`
	ForcedKeys []ForcedKey `json:"forcedKeys"`
}

// WaypointAt creates a waypoint at the block containing pos with no forced keys.
func WaypointAt(pos Position) Waypoint {
	return Waypoint{
		X:          int(math.Floor(pos.X)),
		Y:          int(math.Floor(pos.Y)),
		Z:          int(math.Floor(pos.Z)),
		ForcedKeys: []ForcedKey{},
	}
}

// HasKey reports whether k is forced at this waypoint.
func (w *Waypoint) HasKey(k ForcedKey) bool {
	for _, fk := range w.ForcedKeys {
		if fk == k {
			return true
		}
	}
	return false
}

// ToggleKey adds k when absent and removes it when present.
func (w *Waypoint) ToggleKey(k ForcedKey) {
	for i, fk := range w.ForcedKeys {
		if fk == k {
			w.ForcedKeys = append(w.ForcedKeys[:i], w.ForcedKeys[i+1:]...)
			return
		}
	}
	w.ForcedKeys = append(w.ForcedKeys, k)
}

func (w Waypoint) MarshalJSON() ([]byte, error) {
	type plain Waypoint
	p := plain(w)
	if p.ForcedKeys == nil {
		p.ForcedKeys = []ForcedKey{}
	}
	return json.Marshal(p)
}

func (w *Waypoint) UnmarshalJSON(data []byte) error {
	type plain Waypoint
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.ForcedKeys == nil {
		p.ForcedKeys = []ForcedKey{}
	}
	for _, k := range p.ForcedKeys {
		if !k.Valid() {
			return fmt.Errorf("%w: %q", ErrUnknownForcedKey, string(k))
		}
	}
	*w = Waypoint(p)
	return nil
}

// PathConfig maps path names to waypoint lists, remembering the order the names
// appeared in so tabs keep the layout of the file they were loaded from.
type PathConfig struct {
	names []string
	paths map[string][]Waypoint
}

// NewPathConfig returns an empty config.
func NewPathConfig() *PathConfig {
	return &PathConfig{paths: make(map[string][]Waypoint)}
}

// DefaultPathConfig is used when no usable path file exists.
func DefaultPathConfig() *PathConfig {
	cfg := NewPathConfig()
	for _, name := range []string{"path1", "path2", "path3"} {
		_ = cfg.Set(name, nil)
	}
	return cfg
}

// Names returns the path names in order. The slice must not be modified.
func (c *PathConfig) Names() []string {
	return c.names
}

// Len returns the number of paths.
func (c *PathConfig) Len() int {
	return len(c.names)
}

// First returns the first path name, or "" for an empty config.
func (c *PathConfig) First() string {
	if len(c.names) == 0 {
		return ""
	}
	return c.names[0]
}

// Has reports whether name is a path in the config.
func (c *PathConfig) Has(name string) bool {
	_, ok := c.paths[name]
	return ok
}

// Points returns the waypoints of a path. The returned slice aliases the config.
func (c *PathConfig) Points(name string) []Waypoint {
	return c.paths[name]
}

// Set stores points under name, appending the name when it is new.
func (c *PathConfig) Set(name string, points []Waypoint) error {
	if name == "" {
		return ErrPathNameEmpty
	}
	if points == nil {
		points = []Waypoint{}
	}
	if _, ok := c.paths[name]; !ok {
		c.names = append(c.names, name)
	}
	c.paths[name] = points
	return nil
}

// Append adds w to the end of a path and returns the new length.
func (c *PathConfig) Append(name string, w Waypoint) int {
	c.paths[name] = append(c.paths[name], w)
	return len(c.paths[name])
}

// Remove deletes the waypoint at index. Out of range indices are ignored.
func (c *PathConfig) Remove(name string, index int) bool {
	pts := c.paths[name]
	if index < 0 || index >= len(pts) {
		return false
	}
	c.paths[name] = append(pts[:index], pts[index+1:]...)
	return true
}

// Swap exchanges the waypoints at i and j. Out of range indices are ignored.
func (c *PathConfig) Swap(name string, i, j int) bool {
	pts := c.paths[name]
	if i < 0 || j < 0 || i >= len(pts) || j >= len(pts) {
		return false
	}
	pts[i], pts[j] = pts[j], pts[i]
	return true
}

// ToggleKey flips a forced key on the waypoint at index.
func (c *PathConfig) ToggleKey(name string, index int, k ForcedKey) bool {
	pts := c.paths[name]
	if index < 0 || index >= len(pts) {
		return false
	}
	pts[index].ToggleKey(k)
	return true
}

// Equal reports semantic equality: same names in the same order, same points,
// and the same forced key sets.
func (c *PathConfig) Equal(o *PathConfig) bool {
	if c == nil || o == nil {
		return c == o
	}
	if len(c.names) != len(o.names) {
		return false
	}
	for i, name := range c.names {
		if o.names[i] != name {
			return false
		}
		a, b := c.paths[name], o.paths[name]
		if len(a) != len(b) {
			return false
		}
		for j := range a {
			if !a[j].equal(&b[j]) {
				return false
			}
		}
	}
	return true
}

func (w *Waypoint) equal(o *Waypoint) bool {
	if w.X != o.X || w.Y != o.Y || w.Z != o.Z || len(w.ForcedKeys) != len(o.ForcedKeys) {
		return false
	}
	for _, k := range w.ForcedKeys {
		if !o.HasKey(k) {
			return false
		}
	}
	return true
}

func (c *PathConfig) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range c.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		pts, err := json.Marshal(c.paths[name])
		if err != nil {
			return nil, err
		}
		buf.Write(pts)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object of name -> waypoint array, keeping key order.
// Duplicate keys keep their first position and the last value.
func (c *PathConfig) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("path config must be a JSON object")
	}

	out := NewPathConfig()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v", tok)
		}
		var pts []Waypoint
		if err := dec.Decode(&pts); err != nil {
			return fmt.Errorf("path %q: %w", name, err)
		}
		if err := out.Set(name, pts); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*c = *out
	return nil
}
