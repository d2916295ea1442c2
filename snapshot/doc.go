// Package snapshot persists point-in-time copies of the order book so
// that recovery only has to replay the journal written after them.
//
// A snapshot stores resting orders in ladder order (bids best-first,
// then asks best-first, FIFO within a level); loading re-rests them in
// that order, which reproduces both price and time priority.
package snapshot
