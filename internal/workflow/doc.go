// Package workflow drives queued assets through the pipeline stages:
// gating, transcription, planning, and export. The manager walks the
// status ladder in order and fans out across the assets of a batch with
// bounded parallelism. Stage failures are classified: validation-class
// errors route the asset to review, everything else marks it failed.
package workflow
