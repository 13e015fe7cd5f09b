package layout

import "pathkit/typedef"

// Control identifies what a click landed on.
type Control int

const (
	None Control = iota
	ControlTab
	ControlImport
	ControlExport
	ControlAddPoint
	ControlDelete
	ControlKey
	ControlMoveUp
	ControlMoveDown
)

func (c Control) String() string {
	switch c {
	case ControlTab:
		return "tab"
	case ControlImport:
		return "import"
	case ControlExport:
		return "export"
	case ControlAddPoint:
		return "add-point"
	case ControlDelete:
		return "delete"
	case ControlKey:
		return "key"
	case ControlMoveUp:
		return "move-up"
	case ControlMoveDown:
		return "move-down"
	}
	return "none"
}

// Hit is the result of a hit test. Tab is set for ControlTab, Index for row
// controls and Key for ControlKey.
type Hit struct {
	Control Control
	Tab     string
	Index   int
	Key     typedef.ForcedKey
}

// HitTest returns the first control containing (x, y). Controls are checked
// in this order: tabs, import, export, add point, row delete buttons, row key
// toggles, row arrows.
func (l Layout) HitTest(x, y float64) Hit {
	for _, t := range l.Tabs {
		if t.Rect.Contains(x, y) {
			return Hit{Control: ControlTab, Tab: t.Name}
		}
	}
	if l.Import.Contains(x, y) {
		return Hit{Control: ControlImport}
	}
	if l.Export.Contains(x, y) {
		return Hit{Control: ControlExport}
	}
	if l.AddPoint.Contains(x, y) {
		return Hit{Control: ControlAddPoint}
	}
	for _, r := range l.Rows {
		if r.Delete.Contains(x, y) {
			return Hit{Control: ControlDelete, Index: r.Index}
		}
	}
	for _, r := range l.Rows {
		for i, k := range r.Keys {
			if k.Contains(x, y) {
				return Hit{Control: ControlKey, Index: r.Index, Key: KeyAt(i)}
			}
		}
	}
	for _, r := range l.Rows {
		if r.Up.Contains(x, y) {
			return Hit{Control: ControlMoveUp, Index: r.Index}
		}
		if r.Down.Contains(x, y) {
			return Hit{Control: ControlMoveDown, Index: r.Index}
		}
	}
	return Hit{Control: None}
}
