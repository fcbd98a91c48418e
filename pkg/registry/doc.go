// Package registry implements the Dialogue Graph Store: the authoritative
// lookup of authored graphs and the mutable per-mentor relationship records.
package registry
