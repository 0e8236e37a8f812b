package notify

import "strings"

var appleScriptEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func appleScriptString(s string) string {
	return `"` + appleScriptEscaper.Replace(s) + `"`
}

// appleScript builds the "display notification" statement for n.
// Notification Center has no sticky mode for scripts, so Wait is ignored.
func appleScript(n Notification) string {
	var b strings.Builder
	b.WriteString("display notification ")
	b.WriteString(appleScriptString(n.Message))
	b.WriteString(" with title ")
	b.WriteString(appleScriptString(n.Title))
	if n.Sound {
		b.WriteString(` sound name "default"`)
	}
	return b.String()
}
