// Package extract turns a rendered listing page into records using the CSS
// selectors from configuration. It works on plain HTML, so it can be tested
// without a browser.
package extract
