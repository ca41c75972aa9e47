// Package interchange exports form snapshots as files and imports them back.
//
// Three file shapes are accepted: export files written by Export, raw
// autosave payloads, and bare prompt documents. Bare documents are checked
// against an embedded OpenAPI schema before the form state is reconstructed
// from them.
package interchange
