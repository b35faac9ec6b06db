// Package license normalizes raw license declarations into a closed set of
// recognized codes and enforces the allow/deny policy that gates whether an
// asset may enter the pipeline.
//
// Normalization answers "is this a license we recognize"; the NC/ND checks
// answer "does its declaration admit non-commercial or no-derivative
// restriction". Both layers must pass before an asset is processed.
package license
