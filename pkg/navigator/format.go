package navigator

import "fmt"

// SliceNumberFormat renders a zero-based slice index as a one-based position
func SliceNumberFormat(slice, maxSlice int) string {
	return fmt.Sprintf("Slice Number:  %d/%d", slice+1, maxSlice+1)
}

// WindowLevelFormat renders the current window level
func WindowLevelFormat(windowLevel int) string {
	return fmt.Sprintf("Window Level:  %d", windowLevel)
}

// WindowFormat renders the current window width
func WindowFormat(window int) string {
	return fmt.Sprintf("Window:  %d", window)
}
