// Package ratelimit paces page loads so a crawl does not hammer the forum.
//
// TokenBucket earns tokens continuously and blocks in Wait until one is
// available or the context is cancelled:
//
//	limiter := ratelimit.PerMinute(20)
//	if err := limiter.Wait(ctx); err != nil {
//	    return err
//	}
//
// PerMinute(0) returns Unlimited, which never blocks.
package ratelimit
