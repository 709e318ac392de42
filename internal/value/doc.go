// Package value provides the untyped value model that crosses the boundary
// between callers and the relational store.
//
// A Value is one of Null, Bool, Int, Float or Text. Binary data never appears
// as raw bytes: blobs read from the store come back as base64 Text, which keeps
// every Value JSON-safe.
//
// Conversions are total in both directions:
//   - Decode / FromJSON turn a decoded JSON value into a Value
//   - ToParameter turns a Value into a driver argument
//   - FromColumn turns a scanned column into a Value
//
// FromColumn checks the scanned type in a fixed order (text, integer, float,
// boolean, blob) and returns Null when nothing matches. The order is part of
// the contract: a column stored as text always reads back as Text, even when
// its contents look numeric.
package value
