// Package bus implements the process-wide broadcast channel using the actor pattern.
//
// Any part of the application publishes named command messages; subscribers register
// a handler under a stable identity. A single goroutine owns all subscriber state and
// is fed through a command channel (no mutexes). Handlers run on the bus goroutine in
// subscription order, so they must return quickly and start their own async work.
package bus
