package typedef

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestPathConfigKeepsFileOrder(t *testing.T) {
	var cfg PathConfig
	doc := `{"zeta":[],"alpha":[{"x":1,"y":2,"z":3,"forcedKeys":["left"]}],"mid":[]}`
	if err := json.Unmarshal([]byte(doc), &cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := strings.Join(cfg.Names(), ",")
	if got != "zeta,alpha,mid" {
		t.Fatalf("unexpected order: %s", got)
	}
	if cfg.First() != "zeta" {
		t.Fatalf("expected first key zeta, got %q", cfg.First())
	}
	pts := cfg.Points("alpha")
	if len(pts) != 1 || pts[0].X != 1 || !pts[0].HasKey(KeyLeft) {
		t.Fatalf("unexpected points: %+v", pts)
	}
}

func TestPathConfigRoundTrip(t *testing.T) {
	cfg := NewPathConfig()
	_ = cfg.Set("home", []Waypoint{
		{X: -4, Y: 64, Z: 10, ForcedKeys: []ForcedKey{KeyForward, KeyRight}},
		{X: 0, Y: 70, Z: 0},
	})
	_ = cfg.Set("mine", nil)

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), "\n  \"home\": [") {
		t.Fatalf("expected two-space indentation, got:\n%s", data)
	}
	if strings.Contains(string(data), "null") {
		t.Fatalf("forced keys must be written as arrays:\n%s", data)
	}

	back := NewPathConfig()
	if err := json.Unmarshal(data, back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !cfg.Equal(back) {
		t.Fatalf("round trip mismatch:\n%s", data)
	}
}

func TestWaypointRejectsUnknownKey(t *testing.T) {
	var w Waypoint
	err := json.Unmarshal([]byte(`{"x":0,"y":0,"z":0,"forcedKeys":["jump"]}`), &w)
	if !errors.Is(err, ErrUnknownForcedKey) {
		t.Fatalf("expected ErrUnknownForcedKey, got %v", err)
	}
}

func TestWaypointNullKeys(t *testing.T) {
	var w Waypoint
	if err := json.Unmarshal([]byte(`{"x":1,"y":2,"z":3,"forcedKeys":null}`), &w); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.ForcedKeys == nil || len(w.ForcedKeys) != 0 {
		t.Fatalf("expected empty key set, got %#v", w.ForcedKeys)
	}
}

func TestPathConfigRejectsNonObject(t *testing.T) {
	var cfg PathConfig
	for _, doc := range []string{`[]`, `"x"`, `{"a":{}}`, `{"a":[1]}`} {
		if err := json.Unmarshal([]byte(doc), &cfg); err == nil {
			t.Fatalf("expected error for %s", doc)
		}
	}
}

func TestWaypointAtFloors(t *testing.T) {
	w := WaypointAt(Position{X: -0.5, Y: 64.9, Z: 12.01})
	if w.X != -1 || w.Y != 64 || w.Z != 12 {
		t.Fatalf("unexpected waypoint %+v", w)
	}
	if w.ForcedKeys == nil || len(w.ForcedKeys) != 0 {
		t.Fatalf("expected empty forced keys")
	}
}

func TestToggleKey(t *testing.T) {
	w := Waypoint{}
	w.ToggleKey(KeyBack)
	w.ToggleKey(KeyLeft)
	if !w.HasKey(KeyBack) || !w.HasKey(KeyLeft) {
		t.Fatalf("expected both keys set: %v", w.ForcedKeys)
	}
	w.ToggleKey(KeyBack)
	if w.HasKey(KeyBack) || len(w.ForcedKeys) != 1 {
		t.Fatalf("expected back removed: %v", w.ForcedKeys)
	}
}

func TestRemoveShiftsLaterPoints(t *testing.T) {
	cfg := NewPathConfig()
	_ = cfg.Set("p", []Waypoint{{X: 0}, {X: 1}, {X: 2}, {X: 3}})
	if !cfg.Remove("p", 1) {
		t.Fatalf("expected removal")
	}
	pts := cfg.Points("p")
	want := []int{0, 2, 3}
	for i, x := range want {
		if pts[i].X != x {
			t.Fatalf("index %d: expected %d, got %d", i, x, pts[i].X)
		}
	}
	if cfg.Remove("p", len(pts)) {
		t.Fatalf("removing at length must be ignored")
	}
}

func TestSwapTwiceRestores(t *testing.T) {
	cfg := NewPathConfig()
	_ = cfg.Set("p", []Waypoint{{X: 0}, {X: 1}, {X: 2}})
	orig := NewPathConfig()
	_ = orig.Set("p", []Waypoint{{X: 0}, {X: 1}, {X: 2}})
	cfg.Swap("p", 1, 0)
	cfg.Swap("p", 0, 1)
	if !cfg.Equal(orig) {
		t.Fatalf("expected original order")
	}
}

func TestNormalizeKeybinds(t *testing.T) {
	k := Keybinds{Forward: "z", Left: "not-a-key", PathEditor: "f5"}
	NormalizeKeybinds(&k)
	if k.Forward != "Z" || k.Left != "A" || k.Back != "S" || k.PathEditor != "F5" || k.Chat != "T" {
		t.Fatalf("unexpected keybinds %+v", k)
	}
	if k.Label(KeyForward) != "Z" {
		t.Fatalf("unexpected label %q", k.Label(KeyForward))
	}
}
