package backup

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"filippo.io/age"
	"filippo.io/age/armor"
	"gopkg.in/yaml.v3"
)

// ErrWrongPassphrase is returned when decryption fails due to a bad passphrase.
var ErrWrongPassphrase = errors.New("wrong passphrase")

// ErrCorrupted is returned when a backup file exists but cannot be parsed.
var ErrCorrupted = errors.New("backup file is corrupted or unreadable")

// ErrPassphraseRequired is returned when reading an encrypted backup without
// a passphrase.
var ErrPassphraseRequired = errors.New("backup is encrypted; a passphrase is required")

// Format is a snapshot serialization.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts json, yaml or yml (any case). Empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown format %q (want json or yaml)", s)
}

// FormatFromPath guesses the format from a file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(strings.TrimSuffix(path, ".age"))) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Encode serializes a snapshot.
func Encode(s *Snapshot, f Format) ([]byte, error) {
	switch f {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return nil, fmt.Errorf("encoding yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encoding yaml: %w", err)
		}
		return buf.Bytes(), nil
	case FormatJSON, "":
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding json: %w", err)
		}
		return append(data, '\n'), nil
	}
	return nil, fmt.Errorf("unknown format %q", f)
}

// Decode parses a snapshot. JSON is recognized by its leading brace,
// anything else is read as YAML.
func Decode(data []byte) (*Snapshot, error) {
	var s Snapshot
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrCorrupted)
	}
	if trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, fmt.Errorf("%w: parsing json: %v", ErrCorrupted, err)
		}
	} else if err := yaml.Unmarshal(trimmed, &s); err != nil {
		return nil, fmt.Errorf("%w: parsing yaml: %v", ErrCorrupted, err)
	}
	if s.Version > SchemaVersion {
		return nil, fmt.Errorf("%w: snapshot version %d is newer than supported version %d",
			ErrCorrupted, s.Version, SchemaVersion)
	}
	return &s, nil
}

const armorHeader = "-----BEGIN AGE ENCRYPTED FILE-----"

// IsEncrypted reports whether data is an armored age file.
func IsEncrypted(data []byte) bool {
	return bytes.HasPrefix(bytes.TrimSpace(data), []byte(armorHeader))
}

// Encrypt wraps plaintext in an armored age file keyed by passphrase.
func Encrypt(plaintext []byte, passphrase string) ([]byte, error) {
	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return nil, fmt.Errorf("creating age recipient: %w", err)
	}

	var buf bytes.Buffer
	armorWriter := armor.NewWriter(&buf)

	w, err := age.Encrypt(armorWriter, recipient)
	if err != nil {
		return nil, fmt.Errorf("initializing age encryption: %w", err)
	}
	if _, err := w.Write(plaintext); err != nil {
		return nil, fmt.Errorf("encrypting backup: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing encryption: %w", err)
	}
	if err := armorWriter.Close(); err != nil {
		return nil, fmt.Errorf("finalizing armor: %w", err)
	}
	return buf.Bytes(), nil
}

// Decrypt reverses Encrypt.
func Decrypt(raw []byte, passphrase string) ([]byte, error) {
	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, fmt.Errorf("creating age identity: %w", err)
	}

	r, err := age.Decrypt(armor.NewReader(bytes.NewReader(raw)), identity)
	if err != nil {
		// age has no typed error for a bad passphrase.
		msg := err.Error()
		if strings.Contains(msg, "no identity matched") || strings.Contains(msg, "incorrect") {
			return nil, fmt.Errorf("%w: %v", ErrWrongPassphrase, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrCorrupted, err)
	}

	plaintext, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading decrypted data: %v", ErrCorrupted, err)
	}
	return plaintext, nil
}

// WriteFile encodes s and writes it to path atomically. A non-empty
// passphrase encrypts the output.
func WriteFile(path string, s *Snapshot, f Format, passphrase string) error {
	data, err := Encode(s, f)
	if err != nil {
		return err
	}
	if passphrase != "" {
		if data, err = Encrypt(data, passphrase); err != nil {
			return err
		}
	}
	return atomicWrite(path, data)
}

// ReadFile loads a snapshot from path. passphrase is called only when the
// file is encrypted.
func ReadFile(path string, passphrase func() (string, error)) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading backup: %w", err)
	}
	if IsEncrypted(data) {
		if passphrase == nil {
			return nil, ErrPassphraseRequired
		}
		pass, err := passphrase()
		if err != nil {
			return nil, err
		}
		if data, err = Decrypt(data, pass); err != nil {
			return nil, err
		}
	}
	return Decode(data)
}

// atomicWrite writes data to a temp file in the target directory, fsyncs it
// and renames it over path.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating backup directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".tally-backup-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpName)
		}
	}()

	if err := os.Chmod(tmpName, 0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("setting temp file permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing backup: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("fsyncing backup: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("committing backup file: %w", err)
	}

	success = true
	return nil
}
