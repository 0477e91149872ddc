// Package http provides the REST surface for the museum content backend.
//
// # Routes
//
// Public (no identity check):
//
//	GET /api/rooms              list rooms ordered by sort order
//	GET /api/hub                doors joined with room slugs + hub settings
//	GET /api/rooms/{slug}       one room plus its items
//	GET /api/rooms/{slug}/items one room's items
//	GET /api/items/{id}/media   short-lived media read URL (no-store)
//
// Admin (identity assertion required, 401 before any handler logic):
//
//	POST   /api/admin/upload-url  mint a write ticket for one media object
//	POST   /api/admin/rooms       create or update a room (intent by id presence)
//	POST   /api/admin/hub         replace hub settings and/or doors in one batch
//	POST   /api/admin/items       create or update an item
//	DELETE /api/admin/rooms/{id}  idempotent room delete (cascades items)
//	DELETE /api/admin/items/{id}  idempotent item delete
//
// Unmatched /api paths answer a JSON 404; anything outside /api answers a
// bare 200 "OK" liveness marker.
//
// # Authentication
//
// Admin routes go through AuthMiddleware with an IdentityGate (see the
// access package). A nil gate denies every admin request; local
// development opts out explicitly with access.OpenGate:
//
//	handler := http.NewHandler(&http.HandlerConfig{Gate: gate}, service)
//	srv := &nethttp.Server{Handler: handler.Router()}
package http
