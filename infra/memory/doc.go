// Package memory provides typed object pools used to recycle hot-path
// allocations, such as resting order nodes in the book.
package memory
