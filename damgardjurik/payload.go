package damgardjurik

import (
	"math/big"

	"github.com/onionoram/onionoram/oramerrors"
	"github.com/onionoram/onionoram/randsrc"
)

// Payload is a ciphertext annotated with the onion layer it currently sits
// at. A payload with CurrentSpace == PlaintextSpace holds a raw plaintext;
// one with CurrentSpace > PlaintextSpace is a ciphertext that, decrypted
// CurrentSpace - PlaintextSpace times, yields the plaintext.
type Payload struct {
	X              *big.Int
	Pub            *PublicKey
	PlaintextSpace int
	CurrentSpace   int
}

// NewPayload wraps x as a payload living between plaintextSpace and
// currentSpace (currentSpace >= plaintextSpace).
func NewPayload(x *big.Int, pub *PublicKey, plaintextSpace, currentSpace int) Payload {
	return Payload{X: x, Pub: pub, PlaintextSpace: plaintextSpace, CurrentSpace: currentSpace}
}

// LiftOnce encrypts the payload at its current layer, producing a payload
// one onion layer higher.
func (p Payload) LiftOnce(src randsrc.Source) Payload {
	encrypted := Encrypt(p.Pub, p.CurrentSpace, p.X, src)
	return NewPayload(encrypted, p.Pub, p.PlaintextSpace, p.CurrentSpace+1)
}

// LiftBy lifts the payload k onion layers, iteratively (not recursively, to
// avoid deep call stacks for large k).
func (p Payload) LiftBy(k int, src randsrc.Source) Payload {
	cur := p
	for i := 0; i < k; i++ {
		cur = cur.LiftOnce(src)
	}
	return cur
}

// DropOnce decrypts the payload down one onion layer. Requires
// CurrentSpace > PlaintextSpace.
func (p Payload) DropOnce(priv *PrivateKey) (Payload, error) {
	if p.CurrentSpace <= p.PlaintextSpace {
		return Payload{}, oramerrors.NewInvariantViolation(
			"DropOnce: current_space (%d) must exceed plaintext_space (%d)",
			p.CurrentSpace, p.PlaintextSpace)
	}
	decrypted := Decrypt(p.Pub, priv, p.CurrentSpace-1, p.X)
	return NewPayload(decrypted, p.Pub, p.PlaintextSpace, p.CurrentSpace-1), nil
}

// DropBy decrypts the payload down k onion layers, iteratively.
func (p Payload) DropBy(k int, priv *PrivateKey) (Payload, error) {
	cur := p
	for i := 0; i < k; i++ {
		var err error
		cur, err = cur.DropOnce(priv)
		if err != nil {
			return Payload{}, err
		}
	}
	return cur, nil
}

// GetPlaintext drops the payload all the way down to its plaintext space.
func (p Payload) GetPlaintext(priv *PrivateKey) (Payload, error) {
	return p.DropBy(p.CurrentSpace-p.PlaintextSpace, priv)
}
