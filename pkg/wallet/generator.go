// Package wallet generates fresh receiving key pairs for UTXO chains.
package wallet

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/base58"
)

// Network carries the address version bytes for one chain. Passing it
// per call keeps generation free of process-global network state.
type Network struct {
	Name         string
	PubKeyHashID byte
	WIFID        byte
}

var (
	BitcoinMain = Network{Name: "bitcoin", PubKeyHashID: 0x00, WIFID: 0x80}
	DogeMain    = Network{Name: "dogecoin", PubKeyHashID: 0x1e, WIFID: 0x9e}
)

// KeyPair is a freshly generated address and its WIF-encoded private key.
type KeyPair struct {
	Address    string
	PrivateWIF string
}

// Generate mints a new secp256k1 key pair and derives the P2PKH address
// for the given network. Every call draws fresh randomness; key pairs are
// never reused.
func Generate(net Network) (*KeyPair, error) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, err
	}
	pubHash := btcutil.Hash160(priv.PubKey().SerializeCompressed())
	// Trailing 0x01 marks the WIF as encoding a compressed public key.
	wifPayload := append(priv.Serialize(), 0x01)
	return &KeyPair{
		Address:    base58.CheckEncode(pubHash, net.PubKeyHashID),
		PrivateWIF: base58.CheckEncode(wifPayload, net.WIFID),
	}, nil
}
