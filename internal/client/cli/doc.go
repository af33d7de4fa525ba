// Package cli provides the interactive bcards command-line client.
//
// App ties the session store, the API services and the view controllers to
// a read-eval-print loop. Every screen has a path ("/", "/card/<id>",
// "/my-cards/new", ...) resolved by the nav router; shortcut commands such
// as "fav" or "login" are just names for those paths.
//
// Forms prompt field by field and re-ask while a value is invalid.
// Passwords are read without echo when stdin is a terminal.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
