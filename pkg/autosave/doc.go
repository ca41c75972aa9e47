// Package autosave persists form snapshots behind a debounce and restores
// them on startup.
//
// A Gateway owns one storage key. QueueSave replaces the pending snapshot and
// re-arms a single scheduled task, so bursts of edits are coalesced into one
// write. Each write appends to a bounded history. Load hands payloads written
// with another schema version to the configured config.Migrator and refuses
// partial results.
//
// Status transitions: idle -> saving -> saved, idle -> disabled when the
// startup check fails (terminal), and any state -> error on a failed read or
// write, recovering on the next successful operation.
package autosave
