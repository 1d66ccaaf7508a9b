package physics

import (
	"math"

	"github.com/lixenwraith/firehose/core"
)

// Integrate performs semi-implicit Euler: v = v + a*dt; p = p + v*dt
// Velocities are pixels per millisecond, acceleration pixels per millisecond squared
func Integrate(p *core.Particle, ax, ay, dt float64) {
	p.Vel.X += ax * dt
	p.Vel.Y += ay * dt
	p.Pos.X += p.Vel.X * dt
	p.Pos.Y += p.Vel.Y * dt
}

// Damp scales velocity by factor per reference frame, frame-rate independent
// factor is the retention per refMs (0.98 per 16ms keeps 98% each nominal frame)
func Damp(p *core.Particle, factor, dt, refMs float64) {
	if refMs <= 0 {
		return
	}
	k := math.Pow(factor, dt/refMs)
	p.Vel.X *= k
	p.Vel.Y *= k
}

// ReflectBoundsX handles horizontal wall collision with restitution, returns true on bounce
func ReflectBoundsX(p *core.Particle, minX, maxX, restitution float64) bool {
	if p.Pos.X < minX {
		p.Pos.X = minX
		p.Vel.X = math.Abs(p.Vel.X) * restitution
		return true
	}
	if p.Pos.X > maxX {
		p.Pos.X = maxX
		p.Vel.X = -math.Abs(p.Vel.X) * restitution
		return true
	}
	return false
}

// ReflectBoundsY handles vertical wall collision with restitution, returns true on bounce
func ReflectBoundsY(p *core.Particle, minY, maxY, restitution float64) bool {
	if p.Pos.Y < minY {
		p.Pos.Y = minY
		p.Vel.Y = math.Abs(p.Vel.Y) * restitution
		return true
	}
	if p.Pos.Y > maxY {
		p.Pos.Y = maxY
		p.Vel.Y = -math.Abs(p.Vel.Y) * restitution
		return true
	}
	return false
}

// BounceFloor reflects a downward-moving particle off maxY, returns rebound speed or -1 when no contact
func BounceFloor(p *core.Particle, maxY, restitution float64) float64 {
	if p.Pos.Y < maxY || p.Vel.Y <= 0 {
		return -1
	}
	p.Pos.Y = maxY
	p.Vel.Y = -p.Vel.Y * restitution
	return -p.Vel.Y
}

// Polar returns the point at angle/radius around center
func Polar(cx, cy, angle, radius float64) core.Vec2 {
	return core.Vec2{X: cx + math.Cos(angle)*radius, Y: cy + math.Sin(angle)*radius}
}

// Speed returns velocity magnitude
func Speed(p *core.Particle) float64 {
	return math.Hypot(p.Vel.X, p.Vel.Y)
}
