// Package storage defines the persistence interfaces for the CMS.
//
// It provides a high-level abstraction for storing locales, users, pages
// with their revisions, and translation data. Implementations of these
// interfaces (e.g., using SQLite) live in subpackages.
//
// Lookups for records that do not exist return ErrNotFound.
package storage
