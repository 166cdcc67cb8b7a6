//go:build amd64 && !purego

package avx2

import (
	"github.com/cwbudde/algo-nbnxm/md/kernel/internal/arch/registry"
	"github.com/cwbudde/algo-vecmath/cpu"
)

func init() {
	registry.Global.Register(registry.OpEntry{
		Name:      "avx2",
		SIMDLevel: cpu.SIMDAVX2,
		Priority:  20,
		Lanes:     4,
	})
}
