// Package html provides an Extractor for HTML documents.
// It strips tags, scripts and styles and decodes entities, leaving the
// readable text with one block element per line.
package html
