// Package fs abstracts the few filesystem operations used to write snapshots
// and local blobs, so that tests can inject write, sync and close failures.
//
// Production code uses fs.Default ([LocalFS]). Tests wrap it in [FaultyFS]:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule(".tmp-", fs.Fault{FailOnSync: true})
//
// Operations take no context; local syscalls cannot be interrupted.
package fs
