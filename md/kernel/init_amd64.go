//go:build amd64 && !purego

package kernel

import (
	_ "github.com/cwbudde/algo-nbnxm/md/kernel/internal/arch/amd64/avx2"   // register AVX2 lane width
	_ "github.com/cwbudde/algo-nbnxm/md/kernel/internal/arch/amd64/avx512" // register AVX-512 lane width
	_ "github.com/cwbudde/algo-nbnxm/md/kernel/internal/arch/amd64/sse2"   // register SSE2 lane width
	_ "github.com/cwbudde/algo-nbnxm/md/kernel/internal/arch/generic"      // register scalar fallback
)
