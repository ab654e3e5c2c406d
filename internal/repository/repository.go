// Package repository defines data-access contracts for the document store.
// Implementations contain persistence operations only — no business logic.
package repository
