package emailsend

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{\{(.*?)\}\}`)

// renderTemplate replaces {{key}} placeholders in a single pass; placeholders
// without a value render as empty. Braces inside substituted values are left
// as they are.
func renderTemplate(tmpl string, data map[string]interface{}) string {
	tmpl = placeholderPattern.ReplaceAllStringFunc(tmpl, func(m string) string {
		if _, ok := data[m[2:len(m)-2]]; ok {
			return m
		}
		return ""
	})

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		value := ""
		if s, ok := data[k].(string); ok {
			value = s
		} else if data[k] != nil {
			value = fmt.Sprintf("%v", data[k])
		}
		pairs = append(pairs, "{{"+k+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
