// Package password hashea y verifica client secrets.
//
// Los hashes nuevos usan bcrypt por defecto (compatible con los secrets ya
// emitidos con password_hash) o argon2id en formato PHC. Verify detecta
// el formato por prefijo, así ambos conviven en la misma tabla.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

const (
	AlgBcrypt   = "bcrypt"
	AlgArgon2id = "argon2id"
)

// ErrEmpty se retorna al intentar hashear un valor vacío.
var ErrEmpty = errors.New("empty secret")

type Params struct {
	Memory      uint32 // KiB
	Time        uint32
	Parallelism uint8
	KeyLen      uint32
}

var DefaultArgon2 = Params{Memory: 64 * 1024, Time: 3, Parallelism: 1, KeyLen: 32}

// Hasher produce hashes con el algoritmo configurado.
type Hasher struct {
	Alg        string
	BcryptCost int
	Argon2     Params
}

// Default usa bcrypt con costo por defecto.
var Default = Hasher{Alg: AlgBcrypt, BcryptCost: bcrypt.DefaultCost, Argon2: DefaultArgon2}

// NewHasher valida el algoritmo. Cadena vacía equivale a bcrypt.
func NewHasher(alg string) (Hasher, error) {
	h := Default
	switch strings.ToLower(strings.TrimSpace(alg)) {
	case "", AlgBcrypt:
		h.Alg = AlgBcrypt
	case AlgArgon2id:
		h.Alg = AlgArgon2id
	default:
		return Hasher{}, fmt.Errorf("password: unknown algorithm %q", alg)
	}
	return h, nil
}

func (h Hasher) Hash(plain string) (string, error) {
	if plain == "" {
		return "", ErrEmpty
	}
	if h.Alg == AlgArgon2id {
		return hashArgon2id(h.Argon2, plain)
	}
	cost := h.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify compara plain contra un hash bcrypt o argon2id en tiempo constante.
// Un hash con formato desconocido nunca verifica.
func Verify(plain, hash string) bool {
	switch {
	case strings.HasPrefix(hash, "$argon2id$"):
		return verifyArgon2id(plain, hash)
	case strings.HasPrefix(hash, "$2a$"), strings.HasPrefix(hash, "$2b$"), strings.HasPrefix(hash, "$2y$"):
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
	default:
		return false
	}
}

// $argon2id$v=19$m=...,t=...,p=...$<saltB64>$<dkB64>
func hashArgon2id(p Params, plain string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	dk := argon2.IDKey([]byte(plain), salt, p.Time, p.Memory, p.Parallelism, p.KeyLen)
	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		p.Memory, p.Time, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(dk),
	), nil
}

func verifyArgon2id(plain, phc string) bool {
	parts := strings.Split(phc, "$")
	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, dk
	if len(parts) != 6 || parts[2] != "v=19" {
		return false
	}
	var m, t uint32
	var p uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &m, &t, &p); err != nil {
		return false
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	stored, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(stored) == 0 {
		return false
	}
	key := argon2.IDKey([]byte(plain), salt, t, m, p, uint32(len(stored)))
	return subtle.ConstantTimeCompare(key, stored) == 1
}
