// Package memory provides the object reuse primitives of the engine:
// a typed Pool, the RetireRing that parks terminated orders, and the
// epoch counters that decide when a parked order may be recycled.
//
// The package is dependency-free.
package memory
