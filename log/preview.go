package log

// defaultMaxLoggedStrLen limits preview string length to prevent log spam.
// Malformed input lines and provider payloads can be arbitrarily large.
const defaultMaxLoggedStrLen = 100

// Preview returns a log-safe preview of str.
//
// maxLen is optional and defaults to defaultMaxLoggedStrLen.
// Returns:
//   - Original string if len <= effective max length
//   - Truncated string with a trailing ellipsis otherwise
func Preview(str string, maxLen ...int) string {
	l := defaultMaxLoggedStrLen
	if len(maxLen) > 0 {
		l = maxLen[0]
	}

	if len(str) <= l {
		return str
	}
	if l <= 3 {
		return str[:l]
	}
	return str[:l-3] + "..."
}
