// Package preflight provides readiness checks for the filesystem paths and
// engine binaries stillcast depends on.
//
// These checks run in two contexts:
//   - The CLI "stillcast check" command runs RunAll and prints every result.
//   - The render command calls CheckOutputDirectory and logs a warning when
//     the destination is unwritable or low on space, then carries on.
package preflight
