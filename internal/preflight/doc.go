// Package preflight provides readiness checks for the directories,
// files, and external binaries the pipeline depends on.
//
// These checks run in two contexts:
//   - The workflow manager calls RunAll before processing a batch.
//     If any check fails, the run halts before any media work starts.
//   - The CLI "creatorpack status" command uses the same checks to
//     display environment health.
package preflight
