// Package job provides the concrete Job implementations the engine composes:
// named actions over the execution context, typed actions resolving a single
// context object, sequential and pre/main/post composites with short-circuit
// semantics, parallel join-all groups, cooperative delays, predicate waits
// and retry loops.
//
// Every job contains faults at its own boundary: a panic inside a job body
// is recovered, logged with the job's name, and reported as an ordinary
// false result.
package job
