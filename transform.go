package curio

import "encoding/json"

// Vec3 is a 3-component vector used for position, rotation and scale.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Transform is the combined spatial descriptor for an item or door.
type Transform struct {
	Position Vec3 `json:"position"`
	Rotation Vec3 `json:"rotation"`
	Scale    Vec3 `json:"scale"`
}

// DefaultTransform returns zero position and rotation with unit scale.
func DefaultTransform() Transform {
	return Transform{Scale: Vec3{X: 1, Y: 1, Z: 1}}
}

// TransformPatch is the wire form of a transform: any part may be omitted
// and the defaults of DefaultTransform fill the gaps.
type TransformPatch struct {
	Position *Vec3 `json:"position"`
	Rotation *Vec3 `json:"rotation"`
	Scale    *Vec3 `json:"scale"`
}

// Apply resolves the patch against the defaults.
func (p TransformPatch) Apply() Transform {
	t := DefaultTransform()
	if p.Position != nil {
		t.Position = *p.Position
	}
	if p.Rotation != nil {
		t.Rotation = *p.Rotation
	}
	if p.Scale != nil {
		t.Scale = *p.Scale
	}
	return t
}

// DecodeTransform parses a stored transform column. Malformed or empty
// input never fails: it degrades to DefaultTransform, and partial input
// keeps whatever parts it carries. Stored rows written by older upload
// scripts routinely hold "{}" or truncated JSON, so the decode must stay
// total.
func DecodeTransform(raw string) Transform {
	if raw == "" {
		return DefaultTransform()
	}

	var p TransformPatch
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return DefaultTransform()
	}

	return p.Apply()
}

// Encode serializes the transform for storage as a single JSON text
// column.
func (t Transform) Encode() string {
	b, err := json.Marshal(t)
	if err != nil {
		return "{}"
	}
	return string(b)
}
