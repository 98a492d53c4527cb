// Package changelog splices release entries into a Markdown changelog.
//
// This package implements:
//   - reading and atomically writing the changelog as a sequence of lines
//   - locating the insertion anchor (the "# Changelog" header, or the first
//     dated entry)
//   - rendering a linked, dated entry block and inserting it without
//     touching any other line
//   - running an external formatter over the written file
//
// Insertion is not idempotent: inserting the same tag twice yields two entries.
package changelog
