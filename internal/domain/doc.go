// Package domain contains the authoring entities of the platform: question
// sets, vocabulary sets and classes, each a parent record with ordered
// children and, for question sets and classes, grandchildren. Editable
// fields are split from identity so the same field structs travel through
// editor drafts, the SDK and the persistence layer.
package domain
