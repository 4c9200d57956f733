// Package internal contains the core implementation packages for webbuilder.
//
// This package follows Go's internal package convention, making these
// packages unavailable for import by external modules while providing
// all the core functionality for the webbuilder CLI tool.
//
// # Package Organization
//
// The internal packages are organized by functional domain:
//
//   - types: Property values and style maps shared by every other package
//   - catalog: Read-only component templates grouped by category
//   - canvas: Elements and the pure list operations applied to them
//   - history: Bounded per-page undo/redo over element list snapshots
//   - site: Pages, the active page and per-page histories of a project
//   - theme: Project-wide style tokens and their CSS variables
//   - render: Placeholder substitution and inline style injection
//   - export: HTML, CSS and JSON artifacts for a page
//   - storage: Key-value store over memory, SQL databases and MongoDB
//   - projects: Saving and loading projects through the store
//   - server: HTTP API, preview pages and WebSocket reloads
//   - mcp: Model Context Protocol tools for AI agents
//   - watcher: Snapshot file monitoring with debouncing
//   - config, logging, errors, validation, version: Ambient support
//
// # Data Flow
//
// Every edit goes through a site.Workspace:
//
//   - The catalog supplies the template an element is created from
//   - canvas computes the new element list without touching the old one
//   - history records the new list so it can be undone
//   - projects persists the workspace through a storage.KV
//   - export and the preview server render the list through render
//
// # Security Considerations
//
//   - Config package validates all configuration inputs
//   - Server package checks WebSocket origins against the listen address
//   - Project names are checked before they become keys or file names
//   - Rendered HTML is not escaped; templates are trusted catalog content
//
// For detailed documentation, see the individual package documentation.
package internal
