package curio

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ContentRepo defines the persistence contract for museum content.
// Implementations must handle concurrent access safely; every method
// accepts a context for cancellation and timeout control.
//
// EnsureSchema must be idempotent and cheap: the service invokes it
// before store access on every operation, so tables never have to
// pre-exist.
type ContentRepo interface {
	// EnsureSchema creates the rooms, items, doors, hub_settings and
	// objectives tables if they are absent.
	EnsureSchema(ctx context.Context) error

	// ListRooms returns all rooms ordered by their sort order ascending.
	ListRooms(ctx context.Context) ([]Room, error)

	// GetRoomBySlug returns the room with the given slug, or ErrNotFound.
	GetRoomBySlug(ctx context.Context, slug string) (Room, error)

	// ListItems returns a room's items ordered by creation time ascending.
	ListItems(ctx context.Context, roomID string) ([]Item, error)

	// GetItem returns the item with the given id, or ErrNotFound.
	GetItem(ctx context.Context, id string) (Item, error)

	// InsertRoom stores a new room. The slug must be unique.
	InsertRoom(ctx context.Context, room Room) error

	// UpdateRoom overwrites all mutable fields of the addressed room.
	// Updating a missing id is a no-op, mirroring the write-through
	// behavior of the admin client.
	UpdateRoom(ctx context.Context, room Room) error

	// InsertItem stores a new item and stamps its creation time.
	InsertItem(ctx context.Context, item Item) error

	// UpdateItem overwrites all mutable fields of the addressed item.
	UpdateItem(ctx context.Context, item Item) error

	// DeleteRoom removes a room and its items in one atomic batch.
	// Deleting a missing id succeeds.
	DeleteRoom(ctx context.Context, id string) error

	// DeleteItem removes an item. Deleting a missing id succeeds.
	DeleteItem(ctx context.Context, id string) error

	// ListDoors returns all doors joined with their owning room's slug.
	ListDoors(ctx context.Context) ([]Door, error)

	// HubModelURL returns the global hub model URL, empty when unset.
	HubModelURL(ctx context.Context) (string, error)

	// ReplaceHub applies the settings upsert and the door upserts as one
	// batch that commits or fails together.
	ReplaceHub(ctx context.Context, modelURL *string, doors []DoorRecord) error
}

// MediaSigner mints storage URLs. ReadURL reports false when no public
// base is configured; WriteURL always yields a ticket.
type MediaSigner interface {
	ReadURL(key string, ttl time.Duration) (string, bool)
	WriteURL(key, contentType string, ttl time.Duration) string
}

// ServiceConfig holds configuration options for ContentService.
type ServiceConfig struct {
	ReadTTL  time.Duration // lifetime of minted read URLs (default: 5m)
	WriteTTL time.Duration // lifetime of minted write tickets (default: 10m)
}

// ContentService implements every public and admin operation over a
// ContentRepo and a MediaSigner. Both capabilities are optional: with a
// nil repo, reads degrade to empty results and writes fail with
// ErrUnavailable; with a nil signer, media reads yield no URL and upload
// tickets fail with ErrUnavailable.
type ContentService struct {
	repo     ContentRepo
	signer   MediaSigner
	readTTL  time.Duration
	writeTTL time.Duration
}

func NewContentService(repo ContentRepo, signer MediaSigner, cfg ServiceConfig) *ContentService {
	readTTL := cfg.ReadTTL
	if readTTL <= 0 {
		readTTL = 5 * time.Minute
	}
	writeTTL := cfg.WriteTTL
	if writeTTL <= 0 {
		writeTTL = 10 * time.Minute
	}
	return &ContentService{
		repo:     repo,
		signer:   signer,
		readTTL:  readTTL,
		writeTTL: writeTTL,
	}
}

// ensureStore provisions the schema before any store access. Returns
// ErrUnavailable when no store is configured.
func (s *ContentService) ensureStore(ctx context.Context) error {
	if s.repo == nil {
		return ErrUnavailable
	}
	return s.repo.EnsureSchema(ctx)
}

// ListRooms returns all rooms ordered by sort order. Without a store it
// returns an empty list, not an error.
func (s *ContentService) ListRooms(ctx context.Context) ([]Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}

	if s.repo == nil {
		return []Room{}, nil
	}

	if err := s.ensureStore(ctx); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}

	rooms, err := s.repo.ListRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}

	return rooms, nil
}

// GetRoom returns the room addressed by slug together with its items,
// ordered by creation time ascending.
func (s *ContentService) GetRoom(ctx context.Context, slug string) (Room, []Item, error) {
	if err := ctx.Err(); err != nil {
		return Room{}, nil, fmt.Errorf("get room: %w", err)
	}

	if s.repo == nil {
		return Room{}, nil, fmt.Errorf("get room %s: %w", slug, ErrNotFound)
	}

	if err := s.ensureStore(ctx); err != nil {
		return Room{}, nil, fmt.Errorf("get room: %w", err)
	}

	room, err := s.repo.GetRoomBySlug(ctx, slug)
	if err != nil {
		return Room{}, nil, fmt.Errorf("get room %s: %w", slug, err)
	}

	items, err := s.repo.ListItems(ctx, room.ID)
	if err != nil {
		return Room{}, nil, fmt.Errorf("get room %s: items: %w", slug, err)
	}

	return room, items, nil
}

// ListRoomItems returns the items of the room addressed by slug.
func (s *ContentService) ListRoomItems(ctx context.Context, slug string) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("list room items: %w", err)
	}

	if s.repo == nil {
		return []Item{}, nil
	}

	if err := s.ensureStore(ctx); err != nil {
		return nil, fmt.Errorf("list room items: %w", err)
	}

	room, err := s.repo.GetRoomBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("list room items %s: %w", slug, err)
	}

	items, err := s.repo.ListItems(ctx, room.ID)
	if err != nil {
		return nil, fmt.Errorf("list room items %s: %w", slug, err)
	}

	return items, nil
}

// GetHub returns all doors joined with their owning room's slug plus the
// global hub model URL. Without a store it returns an empty hub.
func (s *ContentService) GetHub(ctx context.Context) (Hub, error) {
	if err := ctx.Err(); err != nil {
		return Hub{}, fmt.Errorf("get hub: %w", err)
	}

	if s.repo == nil {
		return Hub{Doors: []Door{}}, nil
	}

	if err := s.ensureStore(ctx); err != nil {
		return Hub{}, fmt.Errorf("get hub: %w", err)
	}

	doors, err := s.repo.ListDoors(ctx)
	if err != nil {
		return Hub{}, fmt.Errorf("get hub: doors: %w", err)
	}

	modelURL, err := s.repo.HubModelURL(ctx)
	if err != nil {
		return Hub{}, fmt.Errorf("get hub: settings: %w", err)
	}

	if doors == nil {
		doors = []Door{}
	}

	return Hub{Doors: doors, ModelURL: modelURL}, nil
}

// ItemMediaURL mints a read URL for the item's storage key. The returned
// pointer is nil when no public base is configured; an unknown item id is
// ErrNotFound.
func (s *ContentService) ItemMediaURL(ctx context.Context, id string) (*string, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("item media: %w", err)
	}

	if s.repo == nil {
		return nil, nil
	}

	if err := s.ensureStore(ctx); err != nil {
		return nil, fmt.Errorf("item media: %w", err)
	}

	item, err := s.repo.GetItem(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("item media %s: %w", id, err)
	}

	if s.signer == nil {
		return nil, nil
	}

	url, ok := s.signer.ReadURL(item.StorageKey, s.readTTL)
	if !ok {
		return nil, nil
	}

	return &url, nil
}

// CreateRoom inserts a new room and returns its generated id.
func (s *ContentService) CreateRoom(ctx context.Context, fields RoomFields) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("create room: %w", err)
	}

	if err := validateRoomFields(fields); err != nil {
		return "", fmt.Errorf("create room: %w", err)
	}

	if err := s.ensureStore(ctx); err != nil {
		return "", fmt.Errorf("create room: %w", err)
	}

	room := roomFromFields(uuid.NewString(), fields)
	if err := s.repo.InsertRoom(ctx, room); err != nil {
		return "", fmt.Errorf("create room %s: %w", fields.Slug, err)
	}

	return room.ID, nil
}

// UpdateRoom overwrites the addressed room's mutable fields.
func (s *ContentService) UpdateRoom(ctx context.Context, id string, fields RoomFields) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("update room: %w", err)
	}

	if id == "" {
		return fmt.Errorf("update room: %w: id cannot be empty", ErrInvalidInput)
	}

	if err := validateRoomFields(fields); err != nil {
		return fmt.Errorf("update room: %w", err)
	}

	if err := s.ensureStore(ctx); err != nil {
		return fmt.Errorf("update room: %w", err)
	}

	if err := s.repo.UpdateRoom(ctx, roomFromFields(id, fields)); err != nil {
		return fmt.Errorf("update room %s: %w", id, err)
	}

	return nil
}

// CreateItem inserts a new item and returns its generated id.
func (s *ContentService) CreateItem(ctx context.Context, fields ItemFields) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("create item: %w", err)
	}

	if err := validateItemFields(fields); err != nil {
		return "", fmt.Errorf("create item: %w", err)
	}

	if err := s.ensureStore(ctx); err != nil {
		return "", fmt.Errorf("create item: %w", err)
	}

	item := itemFromFields(uuid.NewString(), fields)
	if err := s.repo.InsertItem(ctx, item); err != nil {
		return "", fmt.Errorf("create item: %w", err)
	}

	return item.ID, nil
}

// UpdateItem overwrites the addressed item's mutable fields.
func (s *ContentService) UpdateItem(ctx context.Context, id string, fields ItemFields) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("update item: %w", err)
	}

	if id == "" {
		return fmt.Errorf("update item: %w: id cannot be empty", ErrInvalidInput)
	}

	if err := validateItemFields(fields); err != nil {
		return fmt.Errorf("update item: %w", err)
	}

	if err := s.ensureStore(ctx); err != nil {
		return fmt.Errorf("update item: %w", err)
	}

	if err := s.repo.UpdateItem(ctx, itemFromFields(id, fields)); err != nil {
		return fmt.Errorf("update item %s: %w", id, err)
	}

	return nil
}

// ReplaceHub applies the hub settings and door upserts in one atomic
// batch. An update carrying neither part is ErrInvalidInput.
func (s *ContentService) ReplaceHub(ctx context.Context, update HubUpdate) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("replace hub: %w", err)
	}

	if update.ModelURL == nil && update.Doors == nil {
		return fmt.Errorf("replace hub: %w: no data provided", ErrInvalidInput)
	}

	for _, d := range update.Doors {
		if d.ID == "" {
			return fmt.Errorf("replace hub: %w: door id cannot be empty", ErrInvalidInput)
		}
	}

	if err := s.ensureStore(ctx); err != nil {
		return fmt.Errorf("replace hub: %w", err)
	}

	if err := s.repo.ReplaceHub(ctx, update.ModelURL, update.Doors); err != nil {
		return fmt.Errorf("replace hub: %w", err)
	}

	return nil
}

// DeleteRoom removes a room and its items. Deleting an unknown id
// succeeds: delete is idempotent.
func (s *ContentService) DeleteRoom(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("delete room: %w", err)
	}

	if id == "" {
		return fmt.Errorf("delete room: %w: id cannot be empty", ErrInvalidInput)
	}

	if err := s.ensureStore(ctx); err != nil {
		return fmt.Errorf("delete room: %w", err)
	}

	if err := s.repo.DeleteRoom(ctx, id); err != nil {
		return fmt.Errorf("delete room %s: %w", id, err)
	}

	return nil
}

// DeleteItem removes an item. Deleting an unknown id succeeds.
func (s *ContentService) DeleteItem(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	if id == "" {
		return fmt.Errorf("delete item: %w: id cannot be empty", ErrInvalidInput)
	}

	if err := s.ensureStore(ctx); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	if err := s.repo.DeleteItem(ctx, id); err != nil {
		return fmt.Errorf("delete item %s: %w", id, err)
	}

	return nil
}

// IssueUploadTicket builds the storage key for the requested media object
// and mints a write ticket for it. Requires the signer capability.
func (s *ContentService) IssueUploadTicket(ctx context.Context, req UploadRequest) (UploadTicket, error) {
	if err := ctx.Err(); err != nil {
		return UploadTicket{}, fmt.Errorf("upload ticket: %w", err)
	}

	if s.signer == nil {
		return UploadTicket{}, fmt.Errorf("upload ticket: %w", ErrUnavailable)
	}

	key, err := MediaKey(req.RoomSlug, req.ItemID, req.Filename)
	if err != nil {
		return UploadTicket{}, fmt.Errorf("upload ticket: %w", err)
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return UploadTicket{
		Key: key,
		URL: s.signer.WriteURL(key, contentType, s.writeTTL),
	}, nil
}

func validateRoomFields(fields RoomFields) error {
	if !IsValidSlug(fields.Slug) {
		return fmt.Errorf("%w: invalid slug %q", ErrInvalidInput, fields.Slug)
	}

	if fields.Title == "" {
		return fmt.Errorf("%w: title cannot be empty", ErrInvalidInput)
	}

	return nil
}

func validateItemFields(fields ItemFields) error {
	if fields.RoomID == "" {
		return fmt.Errorf("%w: room id cannot be empty", ErrInvalidInput)
	}

	if fields.Type == "" {
		return fmt.Errorf("%w: type cannot be empty", ErrInvalidInput)
	}

	return nil
}

func roomFromFields(id string, fields RoomFields) Room {
	return Room{
		ID:       id,
		Slug:     fields.Slug,
		Title:    fields.Title,
		Order:    fields.Order,
		IsLocked: fields.IsLocked,
		ModelURL: fields.ModelURL,
	}
}

func itemFromFields(id string, fields ItemFields) Item {
	return Item{
		ID:            id,
		RoomID:        fields.RoomID,
		Title:         fields.Title,
		Type:          fields.Type,
		StorageKey:    fields.StorageKey,
		MediaURL:      fields.MediaURL,
		Transform:     fields.Transform,
		IsObjective:   fields.IsObjective,
		ObjectiveText: fields.ObjectiveText,
	}
}
