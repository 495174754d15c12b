//go:build !nogpu && !android && !js

package compositor

import (
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/vulkan"
)

func init() {
	RegisterBackend(BackendVulkan, func() hal.Backend { return vulkan.Backend{} })
}
