package pointers

// CoalesceString returns custom if non-nil and non-empty, otherwise
// defaultVal.
func CoalesceString(custom *string, defaultVal string) string {
	if custom != nil && *custom != "" {
		return *custom
	}
	return defaultVal
}

// CoalesceStrings returns custom if non-empty, otherwise defaultVal. Used
// to apply an alias's default stop sequences when the request omits them.
func CoalesceStrings(custom, defaultVal []string) []string {
	if len(custom) > 0 {
		return custom
	}
	return defaultVal
}
