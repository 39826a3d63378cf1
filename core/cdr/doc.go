// Package cdr maps numbered residues onto CDR1/CDR2/CDR3 substrings.
//
// Boundaries are inclusive numbering-scheme positions. Each region is kept in
// a fixed-width gapped form (gaps are '-') and a gap-stripped form; CDR2 also
// has a "full" variant that extends one position further. The package is
// domain-only: no I/O, no models.
package cdr
