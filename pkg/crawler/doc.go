// Package crawler implements the resumable crawl loop.
//
// The loop is an explicit state machine:
//
//	INIT -> FETCHING -> EXTRACTING -> WRITING -> CHECKPOINTING -> FETCHING ...
//
// An empty page moves EXTRACTING to DONE, which closes the output array and
// deletes the checkpoint. Any error moves to FAILED, which leaves both the
// checkpoint and the unterminated output in place so the next run resumes
// from the last committed page. When a page budget is set, CHECKPOINTING
// moves to PAUSED once it is spent.
//
// The cursor of the next page is the timestamp of the oldest record on the
// current one. It is computed before any record of the page is written, and
// must move strictly backwards in time.
package crawler
