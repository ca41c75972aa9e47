// Package style applies style records from the registry to a form.
//
// A reconciliation pass runs in a fixed order: the layout is reset to its base
// state, the style panel is activated, sections are shown or collapsed, style
// defaults are written, field rules are applied (disable, then enable, then
// hide, then autoset), the camera section is toggled from the photography
// category, and the preset choices are filtered to the style.
package style
