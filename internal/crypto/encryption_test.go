/*-------------------------------------------------------------------------
 *
 * Schema Designer MCP Server
 *
 * Copyright (c) 2025, Schema Designer MCP contributors
 * This software is released under the MIT License
 *
 *-------------------------------------------------------------------------
 */

package crypto

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}

	tests := []string{"password123", "pa$$w0rd with spaces", "日本語パスワード", ""}
	for _, plaintext := range tests {
		sealed, err := key.Encrypt(plaintext)
		if err != nil {
			t.Fatalf("Encrypt(%q) failed: %v", plaintext, err)
		}
		if plaintext != "" && sealed == plaintext {
			t.Errorf("ciphertext equals plaintext")
		}
		opened, err := key.Decrypt(sealed)
		if err != nil {
			t.Fatalf("Decrypt failed: %v", err)
		}
		if opened != plaintext {
			t.Errorf("round trip = %q, want %q", opened, plaintext)
		}
	}
}

func TestEncryptIsNonDeterministic(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	a, _ := key.Encrypt("same input")
	b, _ := key.Encrypt("same input")
	if a == b {
		t.Errorf("two encryptions produced identical ciphertext")
	}
}

func TestDecryptWithWrongKey(t *testing.T) {
	key1, _ := GenerateKey()
	key2, _ := GenerateKey()

	sealed, err := key1.Encrypt("secret")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if _, err := key2.Decrypt(sealed); err == nil {
		t.Errorf("wrong key decrypted the ciphertext")
	}
}

func TestKeyFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret.key")

	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	if err := key.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("key file permissions = %04o, want 0600", info.Mode().Perm())
	}

	loaded, err := LoadKeyFromFile(path)
	if err != nil {
		t.Fatalf("LoadKeyFromFile failed: %v", err)
	}
	sealed, _ := key.Encrypt("check")
	opened, err := loaded.Decrypt(sealed)
	if err != nil || opened != "check" {
		t.Errorf("loaded key cannot open what the original sealed: %v", err)
	}
}

func TestLoadKeyRejectsLoosePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret.key")
	key, _ := GenerateKey()
	if err := key.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}
	if err := os.Chmod(path, 0644); err != nil {
		t.Fatalf("chmod failed: %v", err)
	}
	if _, err := LoadKeyFromFile(path); err == nil {
		t.Errorf("world-readable key file accepted")
	}
}

func TestLoadOrCreateKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret.key")

	created, err := LoadOrCreateKey(path)
	if err != nil {
		t.Fatalf("LoadOrCreateKey (create) failed: %v", err)
	}
	loaded, err := LoadOrCreateKey(path)
	if err != nil {
		t.Fatalf("LoadOrCreateKey (load) failed: %v", err)
	}

	sealed, _ := created.Encrypt("stable")
	opened, err := loaded.Decrypt(sealed)
	if err != nil || opened != "stable" {
		t.Errorf("second load produced a different key: %v", err)
	}
}
