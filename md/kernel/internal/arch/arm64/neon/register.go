//go:build arm64 && !purego

package neon

import (
	"github.com/cwbudde/algo-nbnxm/md/kernel/internal/arch/registry"
	"github.com/cwbudde/algo-vecmath/cpu"
)

func init() {
	registry.Global.Register(registry.OpEntry{
		Name:      "neon",
		SIMDLevel: cpu.SIMDNEON,
		Priority:  15,
		Lanes:     2,
	})
}
