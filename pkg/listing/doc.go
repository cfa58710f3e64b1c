// Package listing builds the URLs of the paginated search listing.
//
// The listing is a forum search filtered to a single member and ordered by
// date, newest first. Pagination is keyset based: each request after the
// first asks for posts older than the Unix timestamp of the oldest post seen
// on the previous page.
//
// Usage:
//
//	b := listing.NewBuilder("https://forum.example.com/search/123/", "Silent")
//	first := b.Build(nil)
//	cursor := "1700000000"
//	next := b.Build(&cursor)
//
// Build is pure: the same cursor always yields the byte-identical URL.
package listing
