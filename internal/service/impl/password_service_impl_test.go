package impl

import (
	"errors"
	"testing"

	"byod/internal/domain"
)

var cheapArgon = Argon2Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

func TestPasswordHashAndVerify(t *testing.T) {
	ps := NewPasswordServiceWithParams(cheapArgon)
	hash, salt, params, algo, ver, err := ps.Hash("correct horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	cred := &domain.PasswordCredential{Algo: algo, Hash: hash, Salt: salt, ParamsJSON: params, PasswordVer: ver}

	if rehash, ok := ps.Verify("correct horse", cred); !ok || rehash {
		t.Fatalf("verify = rehash %v ok %v", rehash, ok)
	}
	if _, ok := ps.Verify("wrong horse", cred); ok {
		t.Fatalf("wrong password verified")
	}

	_, salt2, _, _, _, _ := ps.Hash("correct horse")
	if string(salt2) == string(salt) {
		t.Fatalf("salts must differ between hashes")
	}
}

func TestPasswordRehashOnPolicyChange(t *testing.T) {
	old := NewPasswordServiceWithParams(cheapArgon)
	hash, salt, params, algo, ver, err := old.Hash("pw")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	cred := &domain.PasswordCredential{Algo: algo, Hash: hash, Salt: salt, ParamsJSON: params, PasswordVer: ver}

	stronger := cheapArgon
	stronger.Time = 2
	rehash, ok := NewPasswordServiceWithParams(stronger).Verify("pw", cred)
	if !ok || !rehash {
		t.Fatalf("expected ok with rehash, got rehash %v ok %v", rehash, ok)
	}

	cred.Algo = "bcrypt"
	if _, ok := old.Verify("pw", cred); ok {
		t.Fatalf("unknown algorithm must not verify")
	}
}

func TestPasswordHashRejectsEmpty(t *testing.T) {
	if _, _, _, _, _, err := NewPasswordServiceWithParams(cheapArgon).Hash(""); !errors.Is(err, ErrEmptyPassword) {
		t.Fatalf("err = %v", err)
	}
}
