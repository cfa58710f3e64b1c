package auth

import (
	"fmt"
	"io"
	"strings"
)

// WriteCookieGuide explains how to copy a session's Cookie header from a
// browser for the given forum origin
func WriteCookieGuide(w io.Writer, origin string) {
	rule := strings.Repeat("=", 72)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "SESSION COOKIE GUIDE")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Members-only listings need the cookies of a logged-in browser session.")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  1. Log in at %s in your browser.\n", origin)
	fmt.Fprintln(w, "  2. Open Developer Tools (F12) and select the Network tab.")
	fmt.Fprintln(w, "  3. Reload the page and click the first request to the forum.")
	fmt.Fprintln(w, "  4. Under Request Headers, copy the whole value of the Cookie header.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "The value looks like:  xf_user=123%2Cabcdef; xf_session=0a1b2c3d...")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "These cookies grant full access to your forum account. They are stored")
	fmt.Fprintln(w, "in the system keychain, or an encrypted file when no keychain exists.")
	fmt.Fprintln(w, rule)
}
