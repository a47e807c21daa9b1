package discount

import "strings"

// NormalizeCode upper-cases a generated code. Redemption itself matches
// case-sensitively.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
