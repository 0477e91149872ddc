// Package curio is the content-management core behind a 3D virtual
// museum front end: rooms, the items displayed inside them, the hub
// scene's doors, and the global hub settings.
//
// # Key Components
//
//   - ContentService: every public and admin operation over a repo and signer
//   - ContentRepo: interface for content persistence (PostgreSQL, SQLite)
//   - MediaSigner: interface for minting media read URLs and write tickets
//   - Transform: defensive codec for the JSON-encoded geometry column
//
// Persistence and the object store are both optional capabilities: public
// reads degrade to empty results without a store, and media URLs degrade
// to null without a configured public base.
//
// See the http package for the REST surface, the access package for the
// identity gate on admin routes, and the database packages for the store
// adapters.
package curio
