//go:build !ladderdebug

package ladder

const verifyDefault = false
