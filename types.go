package curio

import "time"

// Room is a gallery room. Clients address rooms by slug; the id is an
// opaque generated identifier used for foreign keys.
type Room struct {
	ID       string `json:"id"`
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Order    int    `json:"order"`
	IsLocked bool   `json:"isLocked"`
	ModelURL string `json:"modelUrl"`
}

// Item is a displayable object placed inside a room. Media either lives in
// the object store (StorageKey set) or at a direct URL (MediaURL set),
// depending on how it was uploaded.
type Item struct {
	ID            string    `json:"id"`
	RoomID        string    `json:"room_id"`
	Title         string    `json:"title"`
	Type          string    `json:"type"`
	StorageKey    string    `json:"r2_key"`
	MediaURL      string    `json:"media_url"`
	Transform     Transform `json:"transform"`
	IsObjective   bool      `json:"isObjective"`
	ObjectiveText string    `json:"objective_text"`
	CreatedAt     time.Time `json:"created_at"`
}

// Door links the hub scene to a room. RoomID carries the target room's
// slug when the room still exists, falling back to the raw room id for
// doors whose room is gone.
type Door struct {
	ID       string `json:"id"`
	RoomID   string `json:"roomId"`
	Label    string `json:"label"`
	Position Vec3   `json:"position"`
	Rotation Vec3   `json:"rotation"`
	Scale    Vec3   `json:"scale"`
}

// Hub is the top-level scene: all doors plus the single global model URL.
type Hub struct {
	Doors    []Door `json:"doors"`
	ModelURL string `json:"modelUrl"`
}

// RoomFields are the mutable fields of a room, shared by create and
// update. The caller decides which operation it wants; the service never
// infers intent from payload shape.
type RoomFields struct {
	Slug     string
	Title    string
	Order    int
	IsLocked bool
	ModelURL string
}

// ItemFields are the mutable fields of an item.
type ItemFields struct {
	RoomID        string
	Title         string
	Type          string
	StorageKey    string
	MediaURL      string
	Transform     Transform
	IsObjective   bool
	ObjectiveText string
}

// DoorRecord is a door as submitted by the admin client: target room id,
// label, and a fully defaulted transform.
type DoorRecord struct {
	ID        string
	RoomID    string
	Label     string
	Transform Transform
}

// HubUpdate replaces the hub in one batch. A nil ModelURL leaves the
// settings row untouched; a nil Doors slice leaves the doors untouched.
// Doors absent from a non-nil slice are not pruned; removing stale doors
// is the caller's responsibility.
type HubUpdate struct {
	ModelURL *string
	Doors    []DoorRecord
}

// UploadRequest asks for a write ticket for one media object.
type UploadRequest struct {
	RoomSlug    string
	ItemID      string
	Filename    string
	ContentType string
}

// UploadTicket is the minted storage key plus the URL (or opaque ticket)
// the client should use to upload. Clients must branch on URL shape: an
// absolute http(s) URL means direct PUT, anything else is a ticket for
// the fallback upload path.
type UploadTicket struct {
	Key string `json:"key"`
	URL string `json:"url"`
}
