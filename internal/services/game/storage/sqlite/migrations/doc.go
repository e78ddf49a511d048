// Package migrations embeds SQL migration scripts used by the SQLite store.
package migrations
