// Package orderbook implements the in-memory limit order book for a
// single instrument. It maintains two red-black trees of price levels,
// one per side, and matches incoming limit orders by price then time
// priority.
//
// The book is single-writer and holds no locks. Callers that share a
// book across goroutines must serialise access themselves (see the
// service package).
package orderbook
