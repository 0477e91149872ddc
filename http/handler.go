package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/curioverse/curio"
)

// Service is the content operation surface consumed by the handlers.
type Service interface {
	ListRooms(ctx context.Context) ([]curio.Room, error)
	GetRoom(ctx context.Context, slug string) (curio.Room, []curio.Item, error)
	ListRoomItems(ctx context.Context, slug string) ([]curio.Item, error)
	GetHub(ctx context.Context) (curio.Hub, error)
	ItemMediaURL(ctx context.Context, id string) (*string, error)
	CreateRoom(ctx context.Context, fields curio.RoomFields) (string, error)
	UpdateRoom(ctx context.Context, id string, fields curio.RoomFields) error
	CreateItem(ctx context.Context, fields curio.ItemFields) (string, error)
	UpdateItem(ctx context.Context, id string, fields curio.ItemFields) error
	ReplaceHub(ctx context.Context, update curio.HubUpdate) error
	DeleteRoom(ctx context.Context, id string) error
	DeleteItem(ctx context.Context, id string) error
	IssueUploadTicket(ctx context.Context, req curio.UploadRequest) (curio.UploadTicket, error)
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type HandlerConfig struct {
	Gate IdentityGate
	CORS CORSConfig
}

// Handler provides the museum content HTTP surface.
type Handler struct {
	config  HandlerConfig
	service Service
}

// NewHandler creates a new Handler with the given configuration and service.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	return &Handler{
		config:  *config,
		service: service,
	}
}

// Router returns the configured http.Handler. Admin routes sit behind the
// identity gate, which runs strictly before any handler logic; every
// other /api path is public; anything outside /api answers a bare 200 as
// a liveness marker.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.Route("/api", func(r chi.Router) {
		r.NotFound(handleNotFound)
		r.MethodNotAllowed(handleNotFound)

		r.Route("/admin", func(r chi.Router) {
			r.Use(AuthMiddleware(h.config.Gate))
			r.NotFound(handleNotFound)
			r.MethodNotAllowed(handleNotFound)

			r.Post("/upload-url", h.handleUploadURL)
			r.Post("/rooms", h.handleUpsertRoom)
			r.Post("/hub", h.handleReplaceHub)
			r.Post("/items", h.handleUpsertItem)
			r.Delete("/rooms/{id}", h.handleDeleteRoom)
			r.Delete("/items/{id}", h.handleDeleteItem)
		})

		r.Get("/rooms", h.handleListRooms)
		r.Get("/hub", h.handleHub)
		r.Get("/rooms/{slug}", h.handleGetRoom)
		r.Get("/rooms/{slug}/items", h.handleRoomItems)
		r.Get("/items/{id}/media", h.handleItemMedia)
	})

	// Liveness marker for everything outside the API prefix.
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return r
}

func handleNotFound(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, http.StatusNotFound, "Not Found")
}

func (h *Handler) handleListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.service.ListRooms(r.Context())
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, map[string]any{"rooms": rooms})
}

func (h *Handler) handleHub(w http.ResponseWriter, r *http.Request) {
	hub, err := h.service.GetHub(r.Context())
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, hub)
}

func (h *Handler) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	room, items, err := h.service.GetRoom(r.Context(), slug)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, map[string]any{"room": room, "items": items})
}

func (h *Handler) handleRoomItems(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	items, err := h.service.ListRoomItems(r.Context(), slug)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) handleItemMedia(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	url, err := h.service.ItemMediaURL(r.Context(), id)
	if err != nil {
		HandleError(w, err)
		return
	}

	// Minted URLs are short-lived; never let intermediaries cache them.
	w.Header().Set("Cache-Control", "no-store")
	_ = WriteJSON(w, http.StatusOK, map[string]any{"url": url})
}

func (h *Handler) handleUploadURL(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RoomSlug    string `json:"roomSlug"`
		ItemID      string `json:"itemId"`
		Filename    string `json:"filename"`
		ContentType string `json:"contentType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	ticket, err := h.service.IssueUploadTicket(r.Context(), curio.UploadRequest{
		RoomSlug:    body.RoomSlug,
		ItemID:      body.ItemID,
		Filename:    body.Filename,
		ContentType: body.ContentType,
	})
	if err != nil {
		HandleError(w, err)
		return
	}

	slog.Info("upload ticket issued",
		"key", ticket.Key,
		"principal", PrincipalFromContext(r.Context()))

	w.Header().Set("Cache-Control", "no-store")
	_ = WriteJSON(w, http.StatusOK, ticket)
}

func (h *Handler) handleUpsertRoom(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID       string `json:"id"`
		Slug     string `json:"slug"`
		Title    string `json:"title"`
		Order    int    `json:"order"`
		IsLocked bool   `json:"isLocked"`
		ModelURL string `json:"modelUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	fields := curio.RoomFields{
		Slug:     body.Slug,
		Title:    body.Title,
		Order:    body.Order,
		IsLocked: body.IsLocked,
		ModelURL: body.ModelURL,
	}

	// The wire contract is a single upsert endpoint; intent is resolved
	// here, once, by id presence, and the service only sees explicit
	// create or update calls.
	id := body.ID
	var err error
	if id != "" {
		err = h.service.UpdateRoom(r.Context(), id, fields)
	} else {
		id, err = h.service.CreateRoom(r.Context(), fields)
	}
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "id": id})
}

func (h *Handler) handleUpsertItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID            string                `json:"id"`
		RoomID        string                `json:"room_id"`
		Title         string                `json:"title"`
		Type          string                `json:"type"`
		StorageKey    string                `json:"r2_key"`
		MediaURL      string                `json:"media_url"`
		Transform     *curio.TransformPatch `json:"transform"`
		IsObjective   bool                  `json:"isObjective"`
		ObjectiveText string                `json:"objective_text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	transform := curio.DefaultTransform()
	if body.Transform != nil {
		transform = body.Transform.Apply()
	}

	fields := curio.ItemFields{
		RoomID:        body.RoomID,
		Title:         body.Title,
		Type:          body.Type,
		StorageKey:    body.StorageKey,
		MediaURL:      body.MediaURL,
		Transform:     transform,
		IsObjective:   body.IsObjective,
		ObjectiveText: body.ObjectiveText,
	}

	id := body.ID
	var err error
	if id != "" {
		err = h.service.UpdateItem(r.Context(), id, fields)
	} else {
		id, err = h.service.CreateItem(r.Context(), fields)
	}
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "id": id})
}

// doorPayload accepts both admin client door shapes: an explicit nested
// transform, or flat position/rotation/scale fields. roomId is preferred
// over room_id when both are set.
type doorPayload struct {
	ID        string                `json:"id"`
	RoomID    string                `json:"roomId"`
	RoomIDRaw string                `json:"room_id"`
	Label     string                `json:"label"`
	Transform *curio.TransformPatch `json:"transform"`
	Position  *curio.Vec3           `json:"position"`
	Rotation  *curio.Vec3           `json:"rotation"`
	Scale     *curio.Vec3           `json:"scale"`
}

func (p doorPayload) record() curio.DoorRecord {
	patch := curio.TransformPatch{
		Position: p.Position,
		Rotation: p.Rotation,
		Scale:    p.Scale,
	}
	if p.Transform != nil {
		patch = *p.Transform
	}

	roomID := p.RoomID
	if roomID == "" {
		roomID = p.RoomIDRaw
	}

	return curio.DoorRecord{
		ID:        p.ID,
		RoomID:    roomID,
		Label:     p.Label,
		Transform: patch.Apply(),
	}
}

func (h *Handler) handleReplaceHub(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ModelURL *string       `json:"modelUrl"`
		Doors    []doorPayload `json:"doors"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if body.ModelURL == nil && body.Doors == nil {
		WriteError(w, http.StatusBadRequest, "No data provided")
		return
	}

	update := curio.HubUpdate{ModelURL: body.ModelURL}
	if body.Doors != nil {
		update.Doors = make([]curio.DoorRecord, 0, len(body.Doors))
		for _, d := range body.Doors {
			update.Doors = append(update.Doors, d.record())
		}
	}

	if err := h.service.ReplaceHub(r.Context(), update); err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) handleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteRoom(r.Context(), id); err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteItem(r.Context(), id); err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}
