package utils

// ToStringSlice keeps the string elements of a decoded JSON array.
func ToStringSlice(value any) []string {
	stringSlice := make([]string, 0)
	switch v := value.(type) {
	case []string:
		return append(stringSlice, v...)
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				stringSlice = append(stringSlice, s)
			}
		}
	}
	return stringSlice
}

// StringValue returns value as a string when it holds one.
func StringValue(value any) string {
	s, _ := value.(string)
	return s
}
