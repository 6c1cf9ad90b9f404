package notification

import "regexp"

var placeholderRegex = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)

// RenderPlaceholders substitutes {{name}} placeholders in tmpl from data.
// Unknown placeholders are left verbatim in the output rather than being
// stripped, so a bad template is visible instead of silently mangled.
func RenderPlaceholders(tmpl string, data map[string]string) string {
	return placeholderRegex.ReplaceAllStringFunc(tmpl, func(match string) string {
		name := placeholderRegex.FindStringSubmatch(match)[1]
		if val, ok := data[name]; ok {
			return val
		}
		return match
	})
}
