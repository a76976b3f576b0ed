// Package workspace loads repository listings and workspace parameters for
// the form engine.
//
// A Loader issues at most one fetch per logical resource (the workspace
// list, the selected workspace's parameters). Starting a new fetch cancels
// the previous one, and any result that arrives for a superseded request or
// after Close is dropped without touching state. Accepted parameter results
// are handed to a ParametersHandler while the loader lock is held, which
// keeps a form rebuild ordered with respect to later selections.
//
// Latch merges loading flags into a single indicator that appears at once
// and disappears only after a minimum hold. FSClient serves fixtures from an
// fs.FS for offline use and tests.
package workspace
