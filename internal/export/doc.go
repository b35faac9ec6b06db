// Package export assembles the deterministic output bundle for a
// completed job: chapter segments with SRT sidecars, vertical highlight
// clips, extracted audio, and the JSON/markdown manifests that describe
// them.
package export
