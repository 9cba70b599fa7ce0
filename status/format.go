package status

import "strconv"

func formatBool(b bool) string {
	return strconv.FormatBool(b)
}

func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 3, 64)
}
