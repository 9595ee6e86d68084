// Package log provides two complementary logging surfaces.
//
// The zerolog-backed Logger (Init, WithComponent) is the structured,
// leveled sink used for ambient process diagnostics — the same pattern the
// rest of the ecosystem uses for its own components.
//
// EventLog is a plain-text, line-oriented sink that mirrors each entry to
// an instance-local file and, optionally, a process-wide global file, in
// the exact bracketed format the HTTP layer's /api/latency and
// /api/top-latency routes parse back out of the instance log. Snapshot and
// cleanup events additionally go to a dedicated snapshot log.
package log
