//go:build ladderdebug

package ladder

// Debug builds check every intermediate against its bit budget.
const verifyDefault = true
