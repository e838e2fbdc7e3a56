package entity

import "github.com/go-gl/mathgl/mgl32"

// Camera is a perspective camera. When a target is set it keeps looking at it.
type Camera struct {
	Base

	fov, aspect, near, far float32
	target                 interface{ Position() mgl32.Vec3 }
}

func NewCamera(name string, fov, aspect, near, far float32) *Camera {
	c := &Camera{
		Base:   newBase(name, TypeCamera),
		fov:    fov,
		aspect: aspect,
		near:   near,
		far:    far,
	}
	c.SetSerializable(false)
	return c
}

func (c *Camera) Fov() float32    { return c.fov }
func (c *Camera) Aspect() float32 { return c.aspect }

func (c *Camera) SetAspect(width, height float32) {
	if width <= 0 || height <= 0 {
		return
	}
	c.aspect = width / height
}

// Projection returns the perspective matrix for the current settings.
func (c *Camera) Projection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.fov), c.aspect, c.near, c.far)
}

// Follow makes the camera face target on every update. Pass nil to stop.
func (c *Camera) Follow(target interface{ Position() mgl32.Vec3 }) {
	c.target = target
}

func (c *Camera) Update(dt float64) {
	if c.target == nil {
		return
	}
	c.lookAt(c.target.Position())
}

func (c *Camera) OnPhysicsUpdate(dt float64) {
	c.Update(dt)
}

func (c *Camera) lookAt(p mgl32.Vec3) {
	dir := p.Sub(c.Position())
	if dir.Len() == 0 {
		return
	}
	c.SetQuaternion(mgl32.QuatLookAtV(c.Position(), p, mgl32.Vec3{0, 1, 0}))
}

func (c *Camera) Snapshot() Snapshot {
	s := c.snapshot()
	s.Properties["fov"] = float64(c.fov)
	s.Properties["aspect"] = float64(c.aspect)
	s.Properties["near"] = float64(c.near)
	s.Properties["far"] = float64(c.far)
	return s
}
