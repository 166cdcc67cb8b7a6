//go:build (!amd64 && !arm64) || purego

package kernel

import (
	_ "github.com/cwbudde/algo-nbnxm/md/kernel/internal/arch/generic"
)
