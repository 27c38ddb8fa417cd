// Package connectors holds sources that feed files into ingestion.
//
// The filesystem connector watches a local directory and ingests files as
// they are created or rewritten.
package connectors
