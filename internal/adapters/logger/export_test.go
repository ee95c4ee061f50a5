package logger

// FormatError flattens and renders err as Logger.Error does in pretty mode.
func FormatError(err error) string {
	return formatErrorEntries(collectErrorEntries(err, 0))
}

// Depths returns the depth of each collected entry.
func Depths(err error) []int {
	entries := collectErrorEntries(err, 0)
	res := make([]int, len(entries))
	for i, e := range entries {
		res[i] = e.depth
	}
	return res
}
