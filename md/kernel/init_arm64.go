//go:build arm64 && !purego

package kernel

import (
	_ "github.com/cwbudde/algo-nbnxm/md/kernel/internal/arch/arm64/neon"
	_ "github.com/cwbudde/algo-nbnxm/md/kernel/internal/arch/generic"
)
