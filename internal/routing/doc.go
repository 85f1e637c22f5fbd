// Package routing finds paths across a transit network.
//
// A network is a Graph of station adjacency plus an EdgeLines index built from
// published line station sequences. ShortestPath minimizes stops,
// ShortestPathMinTransfer minimizes line changes and then stops, and
// CountTransfers splits a found path into per-line segments.
//
// Graph and EdgeLines are treated as read-only once built, so any number of
// goroutines may search the same network at once.
package routing
