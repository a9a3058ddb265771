// Package infra holds the storage adapters behind the domain persistence
// and blob interfaces.
package infra
