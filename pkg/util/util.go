package util

import (
	"fmt"
	"strconv"
)

// RoundFloat rounds the exact binary value of val to precision decimals, ties to even.
func RoundFloat(val float64, precision uint) float64 {
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(val, 'f', int(precision), 64), 64)
	if err != nil {
		return val
	}
	return rounded
}

func ReverseG[T any](arr []T) []T {
	copyArr := make([]T, len(arr))
	copy(copyArr, arr)
	for i, j := 0, len(copyArr)-1; i < j; i, j = i+1, j-1 {
		copyArr[i], copyArr[j] = copyArr[j], copyArr[i]
	}
	return copyArr
}

func AssertPanic(cond bool, msg string, args ...any) {
	if !cond {
		panic(fmt.Sprintf(msg, args...))
	}
}
