package impl

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/json"

	"golang.org/x/crypto/argon2"
)

const argon2idAlgo = "argon2id"

// Argon2Params is stored next to every hash so verification always uses
// the cost the hash was written with.
type Argon2Params struct {
	Time    uint32 `json:"t"`
	Memory  uint32 `json:"m"` // KiB
	Threads uint8  `json:"p"`
	KeyLen  uint32 `json:"k"`
	SaltLen uint32 `json:"s"`
}

// PasswordPolicy is the cost applied to new hashes. Bump Version when the
// policy changes; credentials written under an older one are upgraded on
// the next successful login.
type PasswordPolicy struct {
	Version int
	Params  Argon2Params
}

var DefaultPasswordPolicy = PasswordPolicy{
	Version: 1,
	Params: Argon2Params{
		Time:    3,
		Memory:  64 * 1024,
		Threads: 1,
		KeyLen:  32,
		SaltLen: 16,
	},
}

type PasswordServiceImpl struct {
	policy PasswordPolicy
}

func NewPasswordServiceArgon2id() *PasswordServiceImpl {
	return &PasswordServiceImpl{policy: DefaultPasswordPolicy}
}

// NewPasswordServiceWithParams keeps the current policy version with a
// different cost. Tests use it to stay fast.
func NewPasswordServiceWithParams(p Argon2Params) *PasswordServiceImpl {
	return &PasswordServiceImpl{policy: PasswordPolicy{Version: DefaultPasswordPolicy.Version, Params: p}}
}

func derive(password string, salt []byte, p Argon2Params) []byte {
	return argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, p.KeyLen)
}

func (p *PasswordServiceImpl) Hash(password string) (hash, salt, paramsJSON []byte, algo string, ver int, err error) {
	if password == "" {
		return nil, nil, nil, "", 0, ErrEmptyPassword
	}
	cur := p.policy.Params
	salt = make([]byte, cur.SaltLen)
	if _, err = rand.Read(salt); err != nil {
		return nil, nil, nil, "", 0, err
	}
	if paramsJSON, err = json.Marshal(cur); err != nil {
		return nil, nil, nil, "", 0, err
	}
	return derive(password, salt, cur), salt, paramsJSON, argon2idAlgo, p.policy.Version, nil
}

// Verify reports whether password matches, and on a match whether the
// credential predates the current policy.
func (p *PasswordServiceImpl) Verify(password string, cred interface {
	GetAlgo() string
	GetHash() []byte
	GetSalt() []byte
	GetParamsJSON() []byte
	GetPasswordVer() int
}) (rehashNeeded bool, ok bool) {
	if cred.GetAlgo() != argon2idAlgo {
		return true, false
	}
	var stored Argon2Params
	if err := json.Unmarshal(cred.GetParamsJSON(), &stored); err != nil {
		return true, false
	}
	ok = subtle.ConstantTimeCompare(derive(password, cred.GetSalt(), stored), cred.GetHash()) == 1
	if !ok {
		return false, false
	}
	return cred.GetPasswordVer() != p.policy.Version || stored != p.policy.Params, true
}
