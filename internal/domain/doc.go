// Package domain contains the core entities of the application:
// query jobs and the users who submit them. Domain types carry their
// own validation and state-transition rules and have no dependencies
// on storage or transport concerns.
package domain
