// Package gitcmd provides the narrow git capability surface that the
// bundle selection and reconciliation logic is written against.
//
// The Git interface covers exactly the operations the migration needs
// (ref resolution, bundle create/verify, fetch, push, ref deletion)
// so the core algorithms can be tested against a fake without invoking
// a real git binary. The CLI type is the production implementation,
// shelling out to git found on PATH.
package gitcmd
