//go:build amd64 && !purego

package avx512

import (
	"github.com/cwbudde/algo-nbnxm/md/kernel/internal/arch/registry"
	"github.com/cwbudde/algo-vecmath/cpu"
)

func init() {
	registry.Global.Register(registry.OpEntry{
		Name:      "avx512",
		SIMDLevel: cpu.SIMDAVX512,
		Priority:  30,
		Lanes:     8,
	})
}
