// Package apply replays a bundle into a destination repository and
// pushes the reconciled refs to the remote service.
//
// Bundle refs are fetched into an isolated namespace so the working tree
// and currently-checked-out branch are never touched, then pushed per
// ref onto the remote's standard branch namespace. The isolation
// namespace is emptied on every exit path so repeated runs never
// accumulate stale refs. A partial push is not rolled back: refs that
// made it stay pushed.
package apply
