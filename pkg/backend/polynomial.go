package backend

// polynomial holds coefficients in ascending degree order: p[i] is the
// coefficient of X^i. Used only to build universal-accumulator
// non-membership witnesses (accumulator.go), where the accumulated
// polynomial prod_i (X + member_i) must be evaluated and divided.
type polynomial []Scalar

// mulLinear returns p * (X + c).
func (p polynomial) mulLinear(c Scalar) polynomial {
	out := make(polynomial, len(p)+1)
	for i, coeff := range p {
		out[i+1] = out[i+1].Add(coeff)
		out[i] = out[i].Add(coeff.Mul(c))
	}
	return out
}

// eval returns p(x) via Horner's method.
func (p polynomial) eval(x Scalar) Scalar {
	if len(p) == 0 {
		return Scalar{}
	}
	acc := p[len(p)-1]
	for i := len(p) - 2; i >= 0; i-- {
		acc = acc.Mul(x).Add(p[i])
	}
	return acc
}

// divideByLinear divides p by (X - root) via synthetic division, returning
// the quotient and the remainder p(root).
func (p polynomial) divideByLinear(root Scalar) (quotient polynomial, remainder Scalar) {
	n := len(p)
	if n == 0 {
		return nil, Scalar{}
	}
	if n == 1 {
		return polynomial{}, p[0]
	}
	quotient = make(polynomial, n-1)
	carry := p[n-1]
	if n-2 >= 0 {
		quotient[n-2] = carry
	}
	for i := n - 2; i >= 1; i-- {
		carry = p[i].Add(root.Mul(carry))
		quotient[i-1] = carry
	}
	remainder = p[0].Add(root.Mul(carry))
	return quotient, remainder
}

// accumulatorPolynomial returns prod_i (X + members[i]).
func accumulatorPolynomial(members []Scalar) polynomial {
	p := polynomial{ScalarFromUint64(1)}
	for _, m := range members {
		p = p.mulLinear(m)
	}
	return p
}
