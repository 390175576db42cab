// Package services contains the application core: the archive import
// pipeline and the indexing job controller. Services depend only on the
// port interfaces, never on concrete adapters.
package services
