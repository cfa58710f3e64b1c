// Package output writes extracted records as a single JSON array that grows
// one record at a time.
//
// The opening bracket is written when a crawl starts, each record is appended
// with a separator, and the closing bracket is written only when the crawl
// completes. Until then the file is an unterminated array; a resumed crawl
// reopens it, drops anything written after the last committed record and
// keeps appending to the same array.
//
//	w := output.NewWriter("scraped_posts.json")
//	if err := w.OpenIfNeeded(true, 0); err != nil {
//	    return err
//	}
//	for i, rec := range records {
//	    if err := w.Append(rec, i == 0); err != nil {
//	        return err
//	    }
//	}
//	return w.Finalize()
package output
