//go:build windows

package runner

import "os/exec"

// configureProcessGroup keeps the default cancellation on windows, where
// WaitDelay bounds the wait for orphaned children.
func configureProcessGroup(_ *exec.Cmd) {}
