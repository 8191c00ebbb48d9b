package crypto_test

import (
	"bytes"
	"encoding/pem"
	"io/ioutil"
	"testing"

	"github.com/S35H47/Flight-Surety/crypto"
)

func TestLoadKeys(t *testing.T) {
	privKey, pubKey := crypto.GenerateKeys()
	// DER layout as openssl emits it: the private key sits at bytes 7..39
	// of the EC PRIVATE KEY block, the public point after the 23 byte
	// SubjectPublicKeyInfo header.
	privDer := append(make([]byte, 7), privKey...)
	pubDer := append(make([]byte, 23), pubKey...)
	testDirectory := t.TempDir()
	privKeyFile := testDirectory + "/privkey.pem"
	pubKeyFile := testDirectory + "/pubkey.pem"
	_ = ioutil.WriteFile(privKeyFile, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: privDer}), 0644)
	_ = ioutil.WriteFile(pubKeyFile, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDer}), 0644)
	loadedPriv, loadedPub := crypto.LoadKeys(privKeyFile, pubKeyFile)
	if !bytes.Equal(loadedPriv, privKey) || !bytes.Equal(loadedPub, pubKey) {
		t.Errorf("Failed to load keys from PEM files")
	}
	message := []byte("Some message to be signed")
	if !crypto.Verify(loadedPub, message, crypto.Sign(loadedPriv, message)) {
		t.Errorf("Failed to sign with loaded keys")
	}
}

func TestSignature(t *testing.T) {
	privKey, pubKey := crypto.GenerateKeys()
	message := []byte("Some message to be signed")
	signature := crypto.Sign(privKey, message)
	if !crypto.Verify(pubKey, message, signature) {
		t.Errorf("Failed to verify valid signature")
	}
}

func TestTamperedMessage(t *testing.T) {
	privKey, pubKey := crypto.GenerateKeys()
	signature := crypto.Sign(privKey, []byte("Some message to be signed"))
	if crypto.Verify(pubKey, []byte("Some other message"), signature) {
		t.Errorf("Failed to reject signature over a different message")
	}
}

func TestWrongKey(t *testing.T) {
	privKey, _ := crypto.GenerateKeys()
	_, otherPubKey := crypto.GenerateKeys()
	message := []byte("Some message to be signed")
	signature := crypto.Sign(privKey, message)
	if crypto.Verify(otherPubKey, message, signature) {
		t.Errorf("Failed to reject signature under a different key")
	}
}

func TestCheckPubKey(t *testing.T) {
	_, pubKey := crypto.GenerateKeys()
	if err := crypto.CheckPubKey(pubKey); err != nil {
		t.Errorf("Failed to accept valid public key: %v", err)
	}
	if err := crypto.CheckPubKey([]byte("not a key")); err == nil {
		t.Errorf("Failed to reject malformed public key")
	}
}
