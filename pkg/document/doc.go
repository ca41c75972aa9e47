// Package document synthesizes the canonical JSON prompt document and its
// natural-language rendering from form state.
//
// Synthesis is pure: Synthesize reads the values, the active style and the
// visible sections it is handed and never mutates them, so identical input
// always yields byte-identical output from Marshal and Prompt.
package document
