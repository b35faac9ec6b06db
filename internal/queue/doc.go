// Package queue persists pipeline assets in SQLite. Each asset advances
// through staged statuses (pending through completed) driven by the
// workflow manager; the store records per-stage artifacts (license
// verdict, staged media, transcript, plans) as JSON columns so a run can
// be inspected or resumed.
package queue
