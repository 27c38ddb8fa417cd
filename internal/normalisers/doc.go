// Package normalisers provides the text extractors for supported upload
// formats. Each extractor knows how to pull text out of a specific MIME type.
//
// Extractors are registered with a Registry at startup; the Registry detects
// the MIME type of an upload from its filename and dispatches to the best
// extractor for it.
package normalisers
