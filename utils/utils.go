package utils

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/oklog/ulid"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

var (
	ulidMutex   = sync.Mutex{}
	ulidEntropy = ulid.Monotonic(rand.Reader, 0)
)

// Ternary returns a if condition holds, else b
func Ternary(condition bool, a, b any) any {
	if condition {
		return a
	}
	return b
}

// ULID returns a lexically sortable unique identifier
func ULID() string {
	ulidMutex.Lock()
	defer ulidMutex.Unlock()

	return strings.ToLower(ulid.MustNew(ulid.Timestamp(time.Now()), ulidEntropy).String())
}

func IsValidSubcommand(available []*cobra.Command, sub string) bool {
	for _, s := range available {
		if sub == s.CalledAs() || sub == s.Name() {
			return true
		}
		for _, alias := range s.Aliases {
			if sub == alias {
				return true
			}
		}
	}
	return false
}

// Unmarshal round-trips any JSON-compatible value into dest
func Unmarshal(from, dest any) error {
	data, err := json.Marshal(from)
	if err != nil {
		return fmt.Errorf("error marshaling object: %s", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("error unmarshalling from object: %s", err)
	}
	return nil
}

// UnmarshalFile reads a JSON or YAML file into dest.
//
// When credentials is set, files of the form {"encrypted_data": "..."} are
// decrypted with ENCRYPTION_KEY before decoding.
func UnmarshalFile(file string, dest any, credentials bool) error {
	if _, err := os.Stat(file); err != nil {
		return fmt.Errorf("file not found: %s", err)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("could not read file[%s]: %s", file, err)
	}

	// YAML is a superset of JSON
	data, err = yaml.YAMLToJSON(data)
	if err != nil {
		return fmt.Errorf("failed to parse file[%s]: %s", file, err)
	}

	if credentials {
		data, err = decryptIfNeeded(data)
		if err != nil {
			return fmt.Errorf("failed to decrypt file[%s]: %s", file, err)
		}
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("failed to unmarshal file[%s]: %s", file, err)
	}
	return nil
}

func decryptIfNeeded(data []byte) ([]byte, error) {
	envelope := struct {
		EncryptedData *string `json:"encrypted_data"`
	}{}
	if err := json.Unmarshal(data, &envelope); err != nil || envelope.EncryptedData == nil {
		// not an object, or not encrypted
		return data, nil
	}

	decrypted, err := DecryptConfig(*envelope.EncryptedData)
	if err != nil {
		return nil, err
	}
	return []byte(decrypted), nil
}
