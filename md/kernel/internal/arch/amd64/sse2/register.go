//go:build amd64 && !purego

package sse2

import (
	"github.com/cwbudde/algo-nbnxm/md/kernel/internal/arch/registry"
	"github.com/cwbudde/algo-vecmath/cpu"
)

func init() {
	registry.Global.Register(registry.OpEntry{
		Name:      "sse2",
		SIMDLevel: cpu.SIMDSSE2,
		Priority:  10,
		Lanes:     2,
	})
}
