// Package doc provides the document model shared by every other internal
// package: a recursive tagged value mirroring the JSON data model, plus the
// operations the reduction engine needs over it.
//
// This package contains the model and pure functions only. All other internal
// packages import doc; doc imports nothing internal. This keeps the document
// model the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Three numeric kinds (Uint, Int, Float) are carried so that addition can
//     detect exact overflow rather than silently losing precision
//   - Object fields are kept sorted by property name and unique; traversal
//     order is therefore lexicographic byte order
//   - Compare establishes an arbitrary but total ordering over all values,
//     stable across numeric kinds
package doc
