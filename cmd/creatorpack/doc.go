// Command creatorpack ingests media assets, gates their licenses, and
// produces deterministic export bundles with chapters, highlight shorts,
// and attribution credits. Run `creatorpack --help` for the command tree.
package main
