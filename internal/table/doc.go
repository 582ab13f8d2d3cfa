// Package table turns visually laid-out HTML tables into header-tagged records.
//
// A table arrives as a Source: a caption, a sub-caption, and an ordered list of rows whose
// cells carry their text, their style tags (CSS classes), and an optional rowspan. The
// extractor walks the body rows with an explicit State value: banner rows rebuild the
// header list (and may declare a synthetic Division column), data rows are assembled into
// one Record each, reusing values of cells that span several rows and copying missing
// trailing values from the previous record.
//
// ClassifyTable assigns each table a Kind from its caption, falling back to its position on
// the page. Nothing in this package fetches, logs, or fails: irregular input produces
// Diagnostics and smaller output.
package table
