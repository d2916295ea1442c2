// Package service orchestrates the core components of the matching
// engine: order book, command journal, snapshots and the outbox.
//
// OrderService is the only write entry point. It serialises access to the
// single-writer book and is safe for concurrent use. Transports such as
// gRPC and HTTP sit on top of it.
package service
