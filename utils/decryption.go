package utils

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/datazip-inc/olake-clubspeed/constants"
	"github.com/goccy/go-json"
	"github.com/spf13/viper"
)

// decrypter resolves ENCRYPTION_KEY into either a KMS client (key is a KMS
// ARN) or a local AES-GCM key derived with SHA-256 (anything else)
type decrypter struct {
	kmsClient *kms.Client
	localKey  []byte
}

func newDecrypter(ctx context.Context) (*decrypter, error) {
	key := strings.TrimSpace(viper.GetString(constants.EncryptionKey))
	if key == "" {
		return nil, nil
	}

	if strings.HasPrefix(key, "arn:aws:kms:") {
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		return &decrypter{kmsClient: kms.NewFromConfig(cfg)}, nil
	}

	hash := sha256.Sum256([]byte(key))
	return &decrypter{localKey: hash[:]}, nil
}

func (d *decrypter) decrypt(ctx context.Context, cipherData []byte) (string, error) {
	if d.kmsClient != nil {
		out, err := d.kmsClient.Decrypt(ctx, &kms.DecryptInput{
			CiphertextBlob: cipherData,
		})
		if err != nil {
			return "", fmt.Errorf("decryption failed: %w", err)
		}
		return string(out.Plaintext), nil
	}

	aead, err := localAEAD(d.localKey)
	if err != nil {
		return "", err
	}

	nonceSize := aead.NonceSize()
	if len(cipherData) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	nonce, ciphertext := cipherData[:nonceSize], cipherData[nonceSize:]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("decryption failed: %w", err)
	}
	return string(plaintext), nil
}

func localAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Decrypt returns cipherData unchanged when no ENCRYPTION_KEY is configured
func Decrypt(cipherData []byte) (string, error) {
	ctx := context.Background()
	d, err := newDecrypter(ctx)
	if err != nil {
		return "", fmt.Errorf("decryption failed: %w", err)
	}
	if d == nil {
		return string(cipherData), nil
	}
	return d.decrypt(ctx, cipherData)
}

// DecryptConfig decrypts base64 (URL alphabet) encoded encrypted data
func DecryptConfig(encryptedConfig string) (string, error) {
	// accept both a bare and a JSON-quoted string
	var unquoted string
	if err := json.Unmarshal([]byte(encryptedConfig), &unquoted); err != nil {
		unquoted = encryptedConfig
	}

	encryptedData, err := base64.URLEncoding.DecodeString(unquoted)
	if err != nil {
		return "", fmt.Errorf("failed to decode base64 data: %v", err)
	}

	decrypted, err := Decrypt(encryptedData)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt data: %v", err)
	}
	return decrypted, nil
}

// EncryptConfig is the local-key inverse of DecryptConfig
func EncryptConfig(plaintext string) (string, error) {
	key := strings.TrimSpace(viper.GetString(constants.EncryptionKey))
	if key == "" || strings.HasPrefix(key, "arn:aws:kms:") {
		return "", errors.New("local encryption requires a non-KMS encryption key")
	}

	hash := sha256.Sum256([]byte(key))
	aead, err := localAEAD(hash[:])
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.URLEncoding.EncodeToString(sealed), nil
}
