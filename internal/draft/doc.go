// Package draft holds the in-memory editing state of one authoring session.
//
// A Store keeps a parent record, its children and each child's items
// (questions and answer options, vocabulary items, lessons and materials).
// Mutations never touch the network; they mark sections dirty and queue
// deletions. SaveAll pushes the draft to a Backend, reconciling temporary
// client ids with the ids the server assigns.
//
// Save pipeline order:
//
//  1. queued deletions, children before items (fail fast)
//  2. the parent record, when new or dirty (fail fast)
//  3. changed children (best effort)
//  4. changed items of children that have a server id (best effort)
//
// Every save takes a version number. A save that finds a newer version at
// any checkpoint returns ErrSuperseded and leaves the draft untouched.
//
// A Session couples a Store with a debounce timer and implements the
// close guard used by editors before they are dismissed.
package draft
