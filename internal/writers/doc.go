// Package writers turns scored rows into serialized outputs.
//
// Writers own presentation (TSV, CSV, JSON, JSONL); the scorer stays
// domain-only. JSON and JSONL go through pkg/api (v1) for a stable wire format.
package writers
