package redisutils

import (
	"strconv"
)

// FormatID() formats a nodeID (uint32) into a string
func FormatID(ID uint32) string {
	return strconv.FormatUint(uint64(ID), 10)
}

// ParseID() parses a nodeID (uint32) from the specified string
func ParseID(strVal string) (uint32, error) {
	parsedVal, err := strconv.ParseUint(strVal, 10, 32)
	return uint32(parsedVal), err
}

// ParseInt64() parses an int from the specified string
func ParseInt64(strVal string) (int64, error) {
	parsedVal, err := strconv.ParseInt(strVal, 10, 64)
	return parsedVal, err
}

// ParseFloat64() parses a float64 from the specified string
func ParseFloat64(strVal string) (float64, error) {
	parsedVal, err := strconv.ParseFloat(strVal, 64)
	return parsedVal, err
}
