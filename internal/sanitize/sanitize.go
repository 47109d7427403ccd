// Package sanitize strips and screens dangerous content from free-text
// input before it reaches the credential store. Sanitize and Validate
// intentionally use overlapping but distinct pattern sets: call sites
// sanitize first and then gate on Validate over the stripped value.
package sanitize

import "regexp"

var (
	reChars      = regexp.MustCompile(`[<>"'&]`)
	reJavascript = regexp.MustCompile(`(?i)javascript:`)
	reDataHTML   = regexp.MustCompile(`(?i)data:text/html`)
	reEventAttr  = regexp.MustCompile(`(?i)on\w+\s*=`)
	reDropTable  = regexp.MustCompile(`(?i)';?\s*drop\s+table`)
	reUnionSel   = regexp.MustCompile(`(?i)union\s+select`)
	reInsertInto = regexp.MustCompile(`(?i)insert\s+into`)
	reDeleteFrom = regexp.MustCompile(`(?i)delete\s+from`)
	reUpdateSet  = regexp.MustCompile(`(?i)update\s+set`)
	reScriptTag  = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
)

// validatePatterns is the reject list for Validate. It is broader than
// the strip list: it also rejects a fixed set of HTML tag openers.
var validatePatterns = []*regexp.Regexp{
	reScriptTag,
	reJavascript,
	reDataHTML,
	reEventAttr,
	reDropTable,
	reUnionSel,
	reInsertInto,
	reDeleteFrom,
	reUpdateSet,
	regexp.MustCompile(`(?i)<iframe`),
	regexp.MustCompile(`(?i)<object`),
	regexp.MustCompile(`(?i)<embed`),
	regexp.MustCompile(`(?i)<form`),
	regexp.MustCompile(`(?i)<input`),
	regexp.MustCompile(`(?i)<textarea`),
	regexp.MustCompile(`(?i)<select`),
	regexp.MustCompile(`(?i)<button`),
	regexp.MustCompile(`(?i)<link`),
	regexp.MustCompile(`(?i)<meta`),
	regexp.MustCompile(`(?i)<style`),
}

// Sanitize removes dangerous characters and patterns. Patterns apply
// in a fixed order; the script-block strip runs last, after the angle
// brackets it matches on have already been removed by the character
// class, matching the original filtering order.
func Sanitize(input string) string {
	out := reChars.ReplaceAllString(input, "")
	out = reJavascript.ReplaceAllString(out, "")
	out = reDataHTML.ReplaceAllString(out, "")
	out = reEventAttr.ReplaceAllString(out, "")
	out = reDropTable.ReplaceAllString(out, "")
	out = reUnionSel.ReplaceAllString(out, "")
	out = reInsertInto.ReplaceAllString(out, "")
	out = reDeleteFrom.ReplaceAllString(out, "")
	out = reUpdateSet.ReplaceAllString(out, "")
	out = reScriptTag.ReplaceAllString(out, "")
	return out
}

// Validate reports whether the input is free of every dangerous
// pattern. It scans the given string as-is; callers that want the
// stripped form must call Sanitize separately.
func Validate(input string) bool {
	for _, p := range validatePatterns {
		if p.MatchString(input) {
			return false
		}
	}
	return true
}
