// Package service is the single write entry point into the order core.
// It owns every book, journals each command to the entry WAL before
// applying it, and wires the listeners (risk, journal, metrics) that
// observe each accepted order.
//
// All commands and queries are serialised by one mutex; the domain
// types underneath are not safe for concurrent use.
package service
