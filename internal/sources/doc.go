// Package sources resolves raw asset references (local paths or URLs on
// allow-listed public-media hosts) into license-bearing metadata. Each
// adapter knows one source: local files, Wikimedia Commons, NASA Images,
// and the Internet Archive. Adapters only describe assets; the license
// gate decides whether a described asset may be used.
package sources
