// Package layout computes the per-state target poses of every visual
// element. Targets are computed once, when an element joins the population,
// and never change afterwards.
package layout

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Pose is a rigid transform with uniform scale.
type Pose struct {
	Position r3.Vec      `json:"position"`
	Rotation quat.Number `json:"rotation"`
	Scale    float64     `json:"scale"`
}

// Identity is the upright, unrotated orientation.
var Identity = quat.Number{Real: 1}

// EulerXYZ returns the rotation of Euler angles applied in X, Y, Z order,
// matching the renderer's default Euler convention.
func EulerXYZ(x, y, z float64) quat.Number {
	qx := axisAngle(r3.Vec{X: 1}, x)
	qy := axisAngle(r3.Vec{Y: 1}, y)
	qz := axisAngle(r3.Vec{Z: 1}, z)
	return quat.Mul(quat.Mul(qx, qy), qz)
}

func axisAngle(axis r3.Vec, angle float64) quat.Number {
	return quat.Number(r3.NewRotation(angle, axis))
}
