package renderer

import (
	"math"
	"time"
	"unsafe"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
	"github.com/xlab/linmath"

	"github.com/ironsmile/vulkan-frames/frames"
	"github.com/ironsmile/vulkan-frames/unsafer"
	"github.com/ironsmile/vulkan-frames/vkcheck"
)

// UniformBufferObject is the vertex shader's uniform block.
type UniformBufferObject struct {
	Model linmath.Mat4x4
	View  linmath.Mat4x4
	Proj  linmath.Mat4x4
}

// ComputeUniforms spins the model around the Z axis at one radian per second
// and looks at it from above for a framebuffer of the given extent.
func ComputeUniforms(extent vk.Extent2D, elapsed time.Duration) UniformBufferObject {
	ubo := UniformBufferObject{}

	ubo.Model.Identity()
	ubo.Model.RotateZ(&ubo.Model, float32(elapsed.Seconds()))
	ubo.View.LookAt(
		&linmath.Vec3{2, 2, 2},
		&linmath.Vec3{0, 0, 0},
		&linmath.Vec3{0, 0, 1},
	)

	aspectR := float32(1)
	if extent.Height > 0 {
		aspectR = float32(extent.Width) / float32(extent.Height)
	}
	ubo.Proj.Perspective(float32(45*math.Pi/180), aspectR, 0.1, 10)

	// Vulkan's clip space Y axis points down.
	ubo.Proj[1][1] *= -1

	return ubo
}

// uniformSet holds one mapped uniform buffer and one descriptor set per
// swapchain image.
type uniformSet struct {
	buffers []buffer
	mapped  []unsafe.Pointer
	pool    vk.DescriptorPool
	sets    []vk.DescriptorSet
}

func (r *Recorder) createDescriptorSetLayout() error {
	uboLayoutBinding := vk.DescriptorSetLayoutBinding{
		Binding:            0,
		DescriptorType:     vk.DescriptorTypeUniformBuffer,
		DescriptorCount:    1,
		StageFlags:         vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		PImmutableSamplers: nil,
	}

	layoutInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: 1,
		PBindings:    []vk.DescriptorSetLayoutBinding{uboLayoutBinding},
	}

	var descriptorSetLayout vk.DescriptorSetLayout
	res := vk.CreateDescriptorSetLayout(r.device, &layoutInfo, nil, &descriptorSetLayout)
	if err := vkcheck.Result(res); err != nil {
		return errors.Wrap(err, "creating descriptor set layout")
	}
	r.resources.Add(func() {
		vk.DestroyDescriptorSetLayout(r.device, descriptorSetLayout, nil)
	})
	r.setLayout = descriptorSetLayout

	return nil
}

func (r *Recorder) createUniforms(count int, arena *frames.Arena) (*uniformSet, error) {
	u := &uniformSet{}
	bufferSize := vk.DeviceSize(unsafe.Sizeof(UniformBufferObject{}))

	for i := 0; i < count; i++ {
		buf, err := r.createBuffer(
			bufferSize,
			vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit),
			vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit)|
				vk.MemoryPropertyFlags(vk.MemoryPropertyHostCoherentBit),
			arena,
		)
		if err != nil {
			return nil, errors.Wrapf(err, "creating uniform buffer %d", i)
		}

		var pData unsafe.Pointer
		res := vk.MapMemory(r.device, buf.memory, 0, bufferSize, 0, &pData)
		if err := vkcheck.Result(res); err != nil {
			return nil, errors.Wrapf(err, "mapping uniform buffer %d", i)
		}
		mem := buf.memory
		arena.Add(func() {
			vk.UnmapMemory(r.device, mem)
		})

		u.buffers = append(u.buffers, buf)
		u.mapped = append(u.mapped, pData)
	}

	poolSizes := []vk.DescriptorPoolSize{
		{
			Type:            vk.DescriptorTypeUniformBuffer,
			DescriptorCount: uint32(count),
		},
	}

	poolInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		PoolSizeCount: uint32(len(poolSizes)),
		PPoolSizes:    poolSizes,
		MaxSets:       uint32(count),
	}

	var descriptorPool vk.DescriptorPool
	res := vk.CreateDescriptorPool(r.device, &poolInfo, nil, &descriptorPool)
	if err := vkcheck.Result(res); err != nil {
		return nil, errors.Wrap(err, "failed to create descriptor pool")
	}
	arena.Add(func() {
		vk.DestroyDescriptorPool(r.device, descriptorPool, nil)
	})
	u.pool = descriptorPool

	layouts := make([]vk.DescriptorSetLayout, count)
	for i := range layouts {
		layouts[i] = r.setLayout
	}

	allocInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     descriptorPool,
		DescriptorSetCount: uint32(count),
		PSetLayouts:        layouts,
	}

	u.sets = make([]vk.DescriptorSet, count)
	res = vk.AllocateDescriptorSets(r.device, &allocInfo, &u.sets[0])
	if err := vkcheck.Result(res); err != nil {
		return nil, errors.Wrap(err, "failed to allocate descriptor sets")
	}

	for i, set := range u.sets {
		bufferInfo := vk.DescriptorBufferInfo{
			Buffer: u.buffers[i].handle,
			Offset: 0,
			Range:  vk.DeviceSize(vk.WholeSize),
		}

		descriptorWrites := []vk.WriteDescriptorSet{
			{
				SType:           vk.StructureTypeWriteDescriptorSet,
				DstSet:          set,
				DstBinding:      0,
				DstArrayElement: 0,
				DescriptorType:  vk.DescriptorTypeUniformBuffer,
				DescriptorCount: 1,
				PBufferInfo:     []vk.DescriptorBufferInfo{bufferInfo},
			},
		}

		vk.UpdateDescriptorSets(
			r.device,
			uint32(len(descriptorWrites)),
			descriptorWrites,
			0,
			nil,
		)
	}

	return u, nil
}

func (u *uniformSet) write(index uint32, ubo *UniformBufferObject) error {
	if int(index) >= len(u.mapped) {
		return errors.Newf("no uniform buffer for image %d", index)
	}
	vk.Memcopy(u.mapped[index], unsafer.StructToBytes(ubo))
	return nil
}
