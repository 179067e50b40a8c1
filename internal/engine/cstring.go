package engine

import "unsafe"

// read null-terminated C string from pointer
func goString(ptr uintptr) string {
	if ptr == 0 {
		return ""
	}
	var length int
	for *(*byte)(unsafe.Pointer(ptr + uintptr(length))) != 0 {
		length++
	}
	return string(unsafe.Slice((*byte)(unsafe.Pointer(ptr)), length))
}

// read an array of n C strings (char **)
func goStrings(ptr uintptr, n int) []string {
	if ptr == 0 || n <= 0 {
		return nil
	}
	ptrs := unsafe.Slice((*uintptr)(unsafe.Pointer(ptr)), n)
	out := make([]string, n)
	for i, p := range ptrs {
		out[i] = goString(p)
	}
	return out
}
