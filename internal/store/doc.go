// Package store defines the persistence interfaces of the authoring API.
//
// Every method that reads or writes authored content takes the id of the
// signed in user and must only touch rows that user owns; a row owned by
// someone else is reported as not found.
package store
