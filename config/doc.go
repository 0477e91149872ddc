// Package config provides configuration loading and validation for Curio.
//
// The package handles YAML configuration files, environment variables,
// and CLI flags with automatic merging and validation using
// go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (CURIO_ prefix)
//  4. CLI flags
//
// # Environment Variables
//
// All config keys map to environment variables with CURIO_ prefix:
//   - server.port → CURIO_SERVER_PORT
//   - database.type → CURIO_DATABASE_TYPE
//   - storage.public_base → CURIO_STORAGE_PUBLIC_BASE
//
// # Configuration Structure
//
// The Config struct contains:
//   - Server: HTTP port
//   - Service: read/write URL lifetimes in seconds
//   - Database: backend type (sqlite, postgres, none) and DSN
//   - Storage: object-store toggle and public base URL for media read URLs
//   - Access: identity gate (assertion header and key-set endpoint)
//   - CORS: cross-origin resource sharing settings
//   - Log: logging level and format
package config
