package gitcmd_test

import (
	"github.com/ryanmoran/gitferry/internal/gitcmd"
)

// Verify that the CLI implementation satisfies the Git interface.
var _ gitcmd.Git = (*gitcmd.CLI)(nil)
