package damgardjurik

import (
	"math/big"

	"github.com/onionoram/onionoram/oramerrors"
	"github.com/onionoram/onionoram/randsrc"
)

// HomomorphicAdd multiplies two ciphertexts sharing the same public key,
// plaintext space, and current space, yielding a payload whose plaintext is
// the sum of the two inputs' plaintexts mod n^plaintextSpace.
func HomomorphicAdd(x, y Payload) (Payload, error) {
	if x.Pub != y.Pub {
		return Payload{}, oramerrors.NewInvariantViolation("HomomorphicAdd: public keys do not match")
	}
	if x.PlaintextSpace != y.PlaintextSpace {
		return Payload{}, oramerrors.NewInvariantViolation("HomomorphicAdd: plaintext spaces do not match (%d != %d)", x.PlaintextSpace, y.PlaintextSpace)
	}
	if x.CurrentSpace != y.CurrentSpace {
		return Payload{}, oramerrors.NewInvariantViolation("HomomorphicAdd: current spaces do not match (%d != %d)", x.CurrentSpace, y.CurrentSpace)
	}
	modulus := x.Pub.NPow(x.CurrentSpace)
	product := new(big.Int).Mod(new(big.Int).Mul(x.X, y.X), modulus)
	return NewPayload(product, x.Pub, x.PlaintextSpace, x.CurrentSpace), nil
}

// HomomorphicScalarMultiply multiplies hidden's plaintext by selector's
// plaintext (expected to be 0 or 1 for the select protocol's purposes, but
// the math holds for any selector.x value) without decrypting hidden.
// Preconditions: hidden and selector share a public key, selector is
// exactly one onion layer above its own plaintext space, and that plaintext
// space equals hidden's current space.
// The result is rerandomized by a fresh blinding factor so it remains
// semantically secure.
func HomomorphicScalarMultiply(hidden, selector Payload, src randsrc.Source) (Payload, error) {
	if hidden.Pub != selector.Pub {
		return Payload{}, oramerrors.NewInvariantViolation("HomomorphicScalarMultiply: public keys do not match")
	}
	if selector.CurrentSpace-selector.PlaintextSpace != 1 {
		return Payload{}, oramerrors.NewInvariantViolation(
			"HomomorphicScalarMultiply: selector must be exactly one onion layer above its plaintext (got current=%d plaintext=%d)",
			selector.CurrentSpace, selector.PlaintextSpace)
	}
	if hidden.CurrentSpace != selector.PlaintextSpace {
		return Payload{}, oramerrors.NewInvariantViolation(
			"HomomorphicScalarMultiply: hidden.current_space (%d) must equal selector.plaintext_space (%d)",
			hidden.CurrentSpace, selector.PlaintextSpace)
	}

	pub := hidden.Pub
	modulusPlain := pub.NPow(selector.CurrentSpace - 1)
	modulusCipher := pub.NPow(selector.CurrentSpace)

	newPayload := new(big.Int).Exp(selector.X, hidden.X, modulusCipher)

	r := new(big.Int).Mod(src.RandomBits(pub.Bits), modulusCipher)
	r = new(big.Int).Exp(r, modulusPlain, modulusCipher)
	newPayload = new(big.Int).Mod(new(big.Int).Mul(newPayload, r), modulusCipher)

	return NewPayload(newPayload, pub, hidden.PlaintextSpace, hidden.CurrentSpace+1), nil
}

// HomomorphicSelect evaluates an oblivious select: given payloads sharing a
// plaintext space and one selector per payload (each at one onion layer
// above its own plaintext space), lifts every payload to the maximum onion
// depth present, scalar-multiplies each by its selector, and folds the
// results with HomomorphicAdd. When exactly one selector's plaintext is 1
// and the rest are 0, the result decrypts to the chosen payload's
// plaintext.
func HomomorphicSelect(payloads, selectors []Payload, src randsrc.Source) (Payload, error) {
	if len(payloads) == 0 {
		return Payload{}, oramerrors.NewInvariantViolation("HomomorphicSelect: no payloads given")
	}
	if len(payloads) != len(selectors) {
		return Payload{}, oramerrors.NewInvariantViolation(
			"HomomorphicSelect: payloads and selectors must have the same length (%d != %d)",
			len(payloads), len(selectors))
	}

	plaintextSpace := payloads[0].PlaintextSpace
	maxOnionLayers := 0
	for _, p := range payloads {
		if p.PlaintextSpace != plaintextSpace {
			return Payload{}, oramerrors.NewInvariantViolation("HomomorphicSelect: payloads do not share a plaintext space")
		}
		if layers := p.CurrentSpace - p.PlaintextSpace; layers > maxOnionLayers {
			maxOnionLayers = layers
		}
	}
	for _, s := range selectors {
		if s.CurrentSpace-s.PlaintextSpace != 1 {
			return Payload{}, oramerrors.NewInvariantViolation("HomomorphicSelect: every selector must be exactly one onion layer above its plaintext")
		}
	}

	lifted := make([]Payload, len(payloads))
	for i, p := range payloads {
		delta := maxOnionLayers - (p.CurrentSpace - p.PlaintextSpace)
		lifted[i] = p.LiftBy(delta, src)
	}

	merged := make([]Payload, len(lifted))
	for i := range lifted {
		m, err := HomomorphicScalarMultiply(lifted[i], selectors[i], src)
		if err != nil {
			return Payload{}, err
		}
		merged[i] = m
	}

	acc := merged[0]
	for i := 1; i < len(merged); i++ {
		var err error
		acc, err = HomomorphicAdd(acc, merged[i])
		if err != nil {
			return Payload{}, err
		}
	}
	return acc, nil
}
