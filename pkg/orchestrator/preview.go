package orchestrator

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/goliatone/go-promptform/pkg/document"
	"github.com/goliatone/go-promptform/pkg/snapshot"
)

// Preview is the derived output of the current form state. When synthesis
// fails JSON and Prompt carry the error text and Err is a *SynthesisError.
type Preview struct {
	Document document.Document
	JSON     string
	Prompt   string
	Err      error
}

// Preview returns the latest preview.
func (c *Controller) Preview() Preview {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.preview
}

// Snapshot captures the current form state with its derived outputs.
func (c *Controller) Snapshot() snapshot.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *Controller) snapshot() snapshot.Snapshot {
	snap := snapshot.Snapshot{
		Task:     c.store.Task(),
		Controls: c.store.Values(),
		Objects:  c.objects.States(),
	}
	if c.preview.Err == nil {
		snap.JSON = json.RawMessage(c.preview.JSON)
		snap.Prompt = c.preview.Prompt
	}
	return snap
}

// refresh recomputes the preview and queues an autosave unless the previous
// step asked to skip one. It must be called with the lock held.
func (c *Controller) refresh() Preview {
	preview, err := c.synthesize()
	c.preview = preview
	if err != nil {
		c.skipAutosave = false
		c.logger.Warn("synthesis failed", zap.Error(err))
		c.gateway.Report(err)
		return preview
	}

	if c.skipAutosave {
		c.skipAutosave = false
		return preview
	}
	if c.gateway.Available() {
		c.gateway.QueueSave(c.snapshot())
	}
	return preview
}

func (c *Controller) synthesize() (Preview, error) {
	doc, err := document.Synthesize(c.input())
	if err == nil {
		var encoded []byte
		encoded, err = document.Marshal(doc)
		if err == nil {
			return Preview{
				Document: doc,
				JSON:     string(encoded),
				Prompt:   document.Prompt(doc),
			}, nil
		}
	}
	failure := &SynthesisError{Err: err}
	return Preview{
		JSON:   "Error generating JSON:\n" + err.Error(),
		Prompt: "Error generating prompt:\n" + err.Error(),
		Err:    failure,
	}, failure
}
