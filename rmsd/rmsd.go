/*
 * rmsd.go, part of loopbench.
 *
 * Copyright 2016 The loopbench authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 */

//Package rmsd implements least-squares rigid-body superposition of 3D
//point sets (the Kabsch algorithm, via singular value decomposition) and
//root-mean-square deviation measures between sets of atomic coordinates.
//Coordinate sets are represented as Nx3 gonum matrices, one point per row.
package rmsd

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

//A Transform is a rigid-body transformation: a rotation followed by a
//translation. Applied to a point p it yields R*p + t.
type Transform struct {
	R *mat.Dense    //3x3 rotation
	T *mat.VecDense //length-3 translation
}

//Apply returns the coordinates in coords (Nx3, one point per row)
//transformed by T. The input is not modified.
func (tr *Transform) Apply(coords *mat.Dense) *mat.Dense {
	r, _ := coords.Dims()
	out := mat.NewDense(r, 3, nil)
	out.Mul(coords, tr.R.T())
	for i := 0; i < r; i++ {
		for j := 0; j < 3; j++ {
			out.Set(i, j, out.At(i, j)+tr.T.AtVec(j))
		}
	}
	return out
}

//checkPair verifies that p and q are non-empty, equally sized Nx3
//coordinate sets.
func checkPair(p, q *mat.Dense) error {
	pr, pc := p.Dims()
	qr, qc := q.Dims()
	if pc != 3 || qc != 3 {
		return fmt.Errorf("rmsd: coordinate sets must have 3 columns, got %d and %d", pc, qc)
	}
	if pr != qr {
		return fmt.Errorf("rmsd: mismatched point counts: %d and %d", pr, qr)
	}
	if pr == 0 {
		return fmt.Errorf("rmsd: empty coordinate sets")
	}
	return nil
}

//centroid returns the mean of the rows of coords.
func centroid(coords *mat.Dense) []float64 {
	r, _ := coords.Dims()
	c := make([]float64, 3)
	for i := 0; i < r; i++ {
		for j := 0; j < 3; j++ {
			c[j] += coords.At(i, j)
		}
	}
	for j := range c {
		c[j] /= float64(r)
	}
	return c
}

//centered returns a copy of coords with the vector c subtracted from
//every row.
func centered(coords *mat.Dense, c []float64) *mat.Dense {
	r, _ := coords.Dims()
	out := mat.NewDense(r, 3, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < 3; j++ {
			out.Set(i, j, coords.At(i, j)-c[j])
		}
	}
	return out
}

//Superpose computes the optimal rigid-body transformation mapping the
//point set p onto the point set q, in the least-squares sense. Rows of p
//and q are corresponding points. The rotation is obtained from the SVD of
//the cross-covariance matrix of the mean-centered sets; if the
//decomposition would produce a reflection (negative determinant product),
//the last column of the left singular vectors is negated so that a proper
//rotation is always returned.
func Superpose(p, q *mat.Dense) (*Transform, error) {
	if err := checkPair(p, q); err != nil {
		return nil, err
	}
	pmean := centroid(p)
	qmean := centroid(q)
	pc := centered(p, pmean)
	qc := centered(q, qmean)

	//cross-covariance
	h := mat.NewDense(3, 3, nil)
	h.Mul(pc.T(), qc)

	var svd mat.SVD
	if ok := svd.Factorize(h, mat.SVDThin); !ok {
		return nil, fmt.Errorf("rmsd: SVD of the cross-covariance matrix failed")
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	//Avoid reflections: with H = U*S*V^T, a negative det(U)*det(V)
	//means the best orthogonal map is improper. Flipping the last
	//column of U (the one paired with the smallest singular value)
	//gives the best proper rotation.
	if mat.Det(&u)*mat.Det(&v) < 0 {
		for i := 0; i < 3; i++ {
			u.Set(i, 2, -u.At(i, 2))
		}
	}

	//R = (U*V^T)^T = V*U^T
	rot := mat.NewDense(3, 3, nil)
	rot.Mul(&v, u.T())

	//t = qmean - R*pmean
	t := mat.NewVecDense(3, nil)
	t.MulVec(rot, mat.NewVecDense(3, pmean))
	for i := 0; i < 3; i++ {
		t.SetVec(i, qmean[i]-t.AtVec(i))
	}
	return &Transform{R: rot, T: t}, nil
}

//RMSD returns the root-mean-square Euclidean deviation between the
//corresponding rows of p and q, without superposing them first. The mean
//is taken over points, not over coordinates.
func RMSD(p, q *mat.Dense) (float64, error) {
	if err := checkPair(p, q); err != nil {
		return 0, err
	}
	r, _ := p.Dims()
	var sum float64
	for i := 0; i < r; i++ {
		for j := 0; j < 3; j++ {
			d := p.At(i, j) - q.At(i, j)
			sum += d * d
		}
	}
	return math.Sqrt(sum / float64(r)), nil
}

//SuperposedRMSD superposes p onto q and returns the RMSD of the
//superposed set, together with the transformation used.
func SuperposedRMSD(p, q *mat.Dense) (float64, *Transform, error) {
	tr, err := Superpose(p, q)
	if err != nil {
		return 0, nil, err
	}
	v, err := RMSD(tr.Apply(p), q)
	if err != nil {
		return 0, nil, err
	}
	return v, tr, nil
}
