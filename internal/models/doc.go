// Package models defines the records the Dongyar service stores.
//
// The settlement engine itself (package calculator) keeps no state. When a
// caller asks for a result to be saved, the computed settlement is copied
// into a Settlement record so it can be fetched again by ID, for example
// from a link shared with the group.
//
// Participants are identified by the names typed into the form; there are
// no user accounts.
package models
