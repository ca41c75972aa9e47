// Package orchestrator owns one prompt form: its store, layout, style
// reconciler, object list and autosave gateway. Every mutation goes through
// the Controller, which reconciles, re-synthesizes the preview and queues an
// autosave in one step.
package orchestrator
