// Package driven defines the interfaces the core services require from
// infrastructure: vector storage, persistence, archive extraction and the
// remote conversion fallback. Adapters implement these interfaces.
package driven
