// Package probdoc turns catalog pages of programming exercises into Markdown
// files. It walks a catalog of topics, fetches each problem page through a
// browser, parses it into a normalized record, optionally rewrites it through
// a text-completion service, and writes the result to disk.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., rod/, goquery/, sqlite/).
package probdoc
