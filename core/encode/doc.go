// Package encode turns CDR strings into fixed-width numeric features:
// L1-normalised k-mer frequency vectors and flattened one-hot vectors.
//
// Column order is part of the trained models' contract. It follows
// residue.Alphabet and must not change.
package encode
