// Package render renders synthesized prompt documents into the output formats
// advertised by the registry (json, paragraph, bullet, markdown, html).
//
// Templated formats run on the pongo2 engine in render/template/pongo using
// the templates embedded under templates/. HTML output is sanitized with
// bluemonday before it is returned.
package render
