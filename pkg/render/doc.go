// Package render loads listing pages in headless Chromium through go-rod and
// hands the rendered DOM to the extractor.
//
// A Browser owns one Chromium process and one tab that is reused for every
// page of a crawl. Navigate loads a URL and waits for the network to go
// quiet, AwaitReady waits until the anti-bot interstitial is gone and the
// listing markup exists, and ExtractRecords reads the records in document
// order.
package render
