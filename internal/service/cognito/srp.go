package cognito

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"

	"golang.org/x/crypto/hkdf"
)

// RFC 3526 3072-bit MODP group, the one Cognito uses for SRP.
const nHex = "FFFFFFFFFFFFFFFFC90FDAA22168C234C4C6628B80DC1CD1" +
	"29024E088A67CC74020BBEA63B139B22514A08798E3404DD" +
	"EF9519B3CD3A431B302B0A6DF25F14374FE1356D6D51C245" +
	"E485B576625E7EC6F44C42E9A637ED6B0BFF5CB6F406B7ED" +
	"EE386BFB5A899FA5AE9F24117C4B1FE649286651ECE45B3D" +
	"C2007CB8A163BF0598DA48361C55D39A69163FA8FD24CF5F" +
	"83655D23DCA3AD961C62F356208552BB9ED529077096966D" +
	"670C354E4ABC9804F1746C08CA18217C32905E462E36CE3B" +
	"E39E772C180E86039B2783A2EC07A28FB5C55DF06F4C52C9" +
	"DE2BCBF6955817183995497CEA956AE515D2261898FA0510" +
	"15728E5A8AAAC42DAD33170D04507A33A85521ABDF1CBA64" +
	"ECFB850458DBEF0A8AEA71575D060C7DB3970F85A6E1E4C7" +
	"ABF5AE8CDB0933D71E8C94E04A25619DCEE3D2261AD2EE6B" +
	"F12FFA06D98A0864D87602733EC86A64521F2B18177B200C" +
	"BBE117577A615D6C770988C0BAD946E208E24FA074E5AB31" +
	"43DB5BFCE0FD108E4B82D120A93AD2CAFFFFFFFFFFFFFFFF"

const (
	derivedKeyInfo  = "Caldera Derived Key"
	timestampLayout = "Mon Jan 2 15:04:05 UTC 2006"
)

var (
	bigN, _ = new(big.Int).SetString(nHex, 16)
	bigG    = big.NewInt(2)
	bigK    = hexHashInt(padHex(bigN) + padHex(bigG))
)

// padHex renders n as even-length hex with a leading zero byte when the
// high bit is set, so it is never read back as negative.
func padHex(n *big.Int) string {
	h := n.Text(16)
	if len(h)%2 == 1 {
		return "0" + h
	}
	if strings.ContainsRune("89abcdef", rune(h[0])) {
		return "00" + h
	}
	return h
}

func padHexString(h string) string {
	n, ok := new(big.Int).SetString(h, 16)
	if !ok {
		return h
	}
	return padHex(n)
}

func hexHash(hexStr string) []byte {
	b, _ := hex.DecodeString(hexStr)
	sum := sha256.Sum256(b)
	return sum[:]
}

func hexHashInt(hexStr string) *big.Int {
	return new(big.Int).SetBytes(hexHash(hexStr))
}

// srpClient holds one SRP exchange. A new one is needed per login.
type srpClient struct {
	poolName string
	a        *big.Int
	A        *big.Int
}

func newSRPClient(userPoolID string, random io.Reader) (*srpClient, error) {
	_, poolName, ok := strings.Cut(userPoolID, "_")
	if !ok || poolName == "" {
		return nil, fmt.Errorf("invalid user pool id %q", userPoolID)
	}
	if random == nil {
		random = rand.Reader
	}

	for {
		buf := make([]byte, 128)
		if _, err := io.ReadFull(random, buf); err != nil {
			return nil, fmt.Errorf("srp random: %w", err)
		}
		a := new(big.Int).Mod(new(big.Int).SetBytes(buf), bigN)
		A := new(big.Int).Exp(bigG, a, bigN)
		if A.Sign() != 0 {
			return &srpClient{poolName: poolName, a: a, A: A}, nil
		}
	}
}

// SRPA is the public ephemeral sent with InitiateAuth.
func (c *srpClient) SRPA() string {
	return c.A.Text(16)
}

// passwordKey derives the 16-byte HKDF key from the server challenge.
func (c *srpClient) passwordKey(userID, password, saltHex, bHex string) ([]byte, error) {
	B, ok := new(big.Int).SetString(bHex, 16)
	if !ok || new(big.Int).Mod(B, bigN).Sign() == 0 {
		return nil, errors.New("srp: invalid server public value")
	}

	u := hexHashInt(padHex(c.A) + padHex(B))
	if u.Sign() == 0 {
		return nil, errors.New("srp: u is zero")
	}

	userHash := sha256.Sum256([]byte(c.poolName + userID + ":" + password))
	x := hexHashInt(padHexString(saltHex) + hex.EncodeToString(userHash[:]))

	gx := new(big.Int).Exp(bigG, x, bigN)
	base := new(big.Int).Sub(B, new(big.Int).Mul(bigK, gx))
	base.Mod(base, bigN)
	exp := new(big.Int).Add(c.a, new(big.Int).Mul(u, x))
	s := new(big.Int).Exp(base, exp, bigN)

	ikm, _ := hex.DecodeString(padHex(s))
	salt, _ := hex.DecodeString(padHex(u))
	key := make([]byte, 16)
	if _, err := io.ReadFull(hkdf.New(sha256.New, ikm, salt, []byte(derivedKeyInfo)), key); err != nil {
		return nil, fmt.Errorf("srp hkdf: %w", err)
	}
	return key, nil
}

// claimSignature signs the PASSWORD_VERIFIER challenge.
func (c *srpClient) claimSignature(key []byte, userID, secretBlock, timestamp string) (string, error) {
	block, err := base64.StdEncoding.DecodeString(secretBlock)
	if err != nil {
		return "", fmt.Errorf("decode secret block: %w", err)
	}

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(c.poolName))
	mac.Write([]byte(userID))
	mac.Write(block)
	mac.Write([]byte(timestamp))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

func srpTimestamp(now time.Time) string {
	return now.UTC().Format(timestampLayout)
}
