// Package api serves the authoring API: question sets, vocabulary sets,
// classes and post likes. Handlers authenticate the caller, validate the
// request body, call a store from internal/store and answer with the
// uniform envelope of internal/api/shared. Internal errors are mapped to
// status codes and safe messages before they reach the client.
package api
