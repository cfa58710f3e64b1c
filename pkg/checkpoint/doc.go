// Package checkpoint persists the resume state of a crawl.
//
// A checkpoint holds the cursor of the next page to fetch, whether the output
// stream has started, and how many records have been durably written. It is
// rewritten after every committed page using a temp file, fsync and rename,
// so a crash leaves either the previous checkpoint or the new one.
//
// The file is deleted only when a crawl completes. Its presence on startup
// means the previous run was interrupted and should be resumed.
package checkpoint
