// Package objects manages the repeatable "additional objects" of a prompt.
//
// Entries are kept in their form shape, with comma separated text for list
// fields. Transform converts an entry into the canonical document shape and
// drops entries without content. Locked entries refuse removal and edits;
// their objectId stays ReadOnly rather than Disabled so it is still collected
// with the rest of the form.
package objects
