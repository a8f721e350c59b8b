package gpu_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/vroutput/pkg/gpu"
	"github.com/justyntemme/vroutput/pkg/gpu/gputest"
)

func TestBuildProgram(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		dev := gputest.New()

		prog, err := gpu.BuildProgram(dev, "vs", "fs")
		require.NoError(t, err)
		assert.NotZero(t, prog.ID())

		// shaders are released once linked
		assert.Equal(t, 0, dev.Live(gputest.KindShader))
		assert.Equal(t, 1, dev.Live(gputest.KindProgram))

		prog.Delete()
		assert.Equal(t, 0, dev.LiveTotal())
		prog.Delete()
		assert.Empty(t, gpu.DrainErrors(dev))
	})

	t.Run("VertexCompileFailure", func(t *testing.T) {
		dev := gputest.New()
		dev.FailCompile[gpu.VertexShader] = "0:1: syntax error"

		_, err := gpu.BuildProgram(dev, "vs", "fs")
		var ce *gpu.CompileError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, gpu.VertexShader, ce.Stage)
		assert.Contains(t, err.Error(), "syntax error")
		assert.Equal(t, 0, dev.LiveTotal())
	})

	t.Run("FragmentCompileFailure", func(t *testing.T) {
		dev := gputest.New()
		dev.FailCompile[gpu.FragmentShader] = "bad"

		_, err := gpu.BuildProgram(dev, "vs", "fs")
		var ce *gpu.CompileError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, gpu.FragmentShader, ce.Stage)
		assert.Equal(t, 0, dev.LiveTotal())
	})

	t.Run("LinkFailure", func(t *testing.T) {
		dev := gputest.New()
		dev.FailLink = "varying mismatch"

		_, err := gpu.BuildProgram(dev, "vs", "fs")
		var le *gpu.LinkError
		require.True(t, errors.As(err, &le))
		assert.Equal(t, 0, dev.LiveTotal())
	})

	t.Run("ProgramAllocationFailure", func(t *testing.T) {
		dev := gputest.New()
		dev.FailCreate[gputest.KindProgram] = true

		_, err := gpu.BuildProgram(dev, "vs", "fs")
		require.ErrorIs(t, err, gputest.ErrRefused)
		assert.Equal(t, 0, dev.LiveTotal())
	})
}

func TestProgramUniforms(t *testing.T) {
	dev := gputest.New()
	prog, err := gpu.BuildProgram(dev, "vs", "fs")
	require.NoError(t, err)

	prog.Use()
	prog.SetInt("u_texture", 0)
	prog.SetBool("u_ripple", true)
	prog.SetFloat("u_time", 12.5)

	v, ok := dev.Uniform(prog.ID(), "u_time")
	require.True(t, ok)
	assert.Equal(t, 12.5, v)

	v, _ = dev.Uniform(prog.ID(), "u_ripple")
	assert.Equal(t, 1.0, v)
	assert.Empty(t, gpu.DrainErrors(dev))
}

func TestQuad(t *testing.T) {
	t.Run("Draw", func(t *testing.T) {
		dev := gputest.New()
		prog, err := gpu.BuildProgram(dev, "vs", "fs")
		require.NoError(t, err)
		quad, err := gpu.NewQuad(dev)
		require.NoError(t, err)

		prog.Use()
		quad.Draw()

		draws := dev.Draws()
		require.Len(t, draws, 1)
		assert.Equal(t, int32(6), draws[0].Count)
		assert.Equal(t, prog.ID(), draws[0].Program)

		quad.Delete()
		prog.Delete()
		assert.Equal(t, 0, dev.LiveTotal())
	})

	t.Run("BufferFailureReleasesVertexArray", func(t *testing.T) {
		dev := gputest.New()
		dev.FailCreate[gputest.KindBuffer] = true

		_, err := gpu.NewQuad(dev)
		require.Error(t, err)
		assert.Equal(t, 1, dev.Created(gputest.KindVertexArray))
		assert.Equal(t, 0, dev.LiveTotal())
	})
}

func TestTexture(t *testing.T) {
	dev := gputest.New()
	tex, err := gpu.NewTexture(dev)
	require.NoError(t, err)

	w, h := tex.Size()
	assert.Zero(t, w)
	assert.Zero(t, h)

	tex.Delete()
	assert.Equal(t, 0, dev.LiveTotal())

	dev.FailCreate[gputest.KindTexture] = true
	_, err = gpu.NewTexture(dev)
	assert.Error(t, err)
}

func TestScope(t *testing.T) {
	t.Run("ReleaseInReverse", func(t *testing.T) {
		var order []int
		var s gpu.Scope
		s.Defer(func() { order = append(order, 1) })
		s.Defer(func() { order = append(order, 2) })
		s.Release()
		s.Release()
		assert.Equal(t, []int{2, 1}, order)
	})

	t.Run("Commit", func(t *testing.T) {
		called := false
		var s gpu.Scope
		s.Defer(func() { called = true })
		s.Commit()
		s.Release()
		assert.False(t, called)
	})
}

func TestRequireAndErrors(t *testing.T) {
	dev := gputest.New()
	assert.NoError(t, gpu.Require(dev, gpu.CapVertexArrayObject))

	dev.Missing[gpu.CapVertexArrayObject] = true
	err := gpu.Require(dev, gpu.CapNonPowerOfTwo, gpu.CapVertexArrayObject)
	assert.ErrorIs(t, err, gpu.ErrMissingCapability)
	assert.Contains(t, err.Error(), "vertex_array_object")

	dev.PushError(gpu.ErrCodeInvalidEnum)
	dev.PushError(0x1234)
	errs := gpu.DrainErrors(dev)
	require.Len(t, errs, 2)
	assert.Equal(t, "GL_INVALID_ENUM", errs[0].Error())
	assert.Equal(t, "GL error 0x1234", errs[1].Error())
	assert.Empty(t, gpu.DrainErrors(dev))
}
