package keys

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/LerianStudio/lib-offline-license-go/constant"
	"github.com/LerianStudio/lib-offline-license-go/model"
	"github.com/LerianStudio/lib-offline-license-go/pkg"
	"github.com/spf13/afero"
)

// SigningParameters is the RSA key material used by license tokens.
// Keys travel as PKCS#1 DER. Parameters built from a public key alone can
// verify but not sign.
type SigningParameters struct {
	public  *rsa.PublicKey
	private *PrivateKey
	keySize int
}

// NewSigningParameters generates a fresh RSA key of bits size.
func NewSigningParameters(bits int) (*SigningParameters, error) {
	g, err := NewGenerator(RSA, bits)
	if err != nil {
		return nil, err
	}

	key, err := rsa.GenerateKey(rand.Reader, g.Size())
	if err != nil {
		return nil, fmt.Errorf("generate rsa key: %w", err)
	}

	return &SigningParameters{
		public:  &key.PublicKey,
		private: &PrivateKey{signer: key},
		keySize: key.N.BitLen(),
	}, nil
}

// SigningParametersFromPublicKey builds verify-only parameters from a PKCS#1 public key.
func SigningParametersFromPublicKey(publicDER []byte) (*SigningParameters, error) {
	pub, err := x509.ParsePKCS1PublicKey(publicDER)
	if err != nil {
		return nil, pkg.NewInvalidKeyError("cannot decode PKCS#1 public key", err)
	}

	return &SigningParameters{public: pub, keySize: pub.N.BitLen()}, nil
}

// SigningParametersFromKeyPair builds parameters from PKCS#1 public and private keys.
// An empty private key yields verify-only parameters.
func SigningParametersFromKeyPair(publicDER, privateDER []byte) (*SigningParameters, error) {
	if len(privateDER) == 0 {
		return SigningParametersFromPublicKey(publicDER)
	}

	priv, err := x509.ParsePKCS1PrivateKey(privateDER)
	if err != nil {
		return nil, pkg.NewInvalidKeyError("cannot decode PKCS#1 private key", err)
	}

	if len(publicDER) > 0 {
		pub, err := x509.ParsePKCS1PublicKey(publicDER)
		if err != nil {
			return nil, pkg.NewInvalidKeyError("cannot decode PKCS#1 public key", err)
		}

		if !pub.Equal(&priv.PublicKey) {
			return nil, pkg.NewInvalidKeyError("public key does not match private key", nil)
		}
	}

	return &SigningParameters{
		public:  &priv.PublicKey,
		private: &PrivateKey{signer: priv},
		keySize: priv.N.BitLen(),
	}, nil
}

// RSAPublicKey returns the public key.
func (p *SigningParameters) RSAPublicKey() *rsa.PublicKey { return p.public }

// RSAPrivateKey returns the private key or an error for verify-only parameters.
func (p *SigningParameters) RSAPrivateKey() (*rsa.PrivateKey, error) {
	if !p.CanSign() {
		return nil, pkg.ValidateBusinessError(constant.ErrMissingPrivateKey, "SigningParameters")
	}

	k, _ := p.private.signer.(*rsa.PrivateKey)

	return k, nil
}

// PublicKey returns the PKCS#1 DER public key.
func (p *SigningParameters) PublicKey() []byte {
	return x509.MarshalPKCS1PublicKey(p.public)
}

// PrivateKey returns the PKCS#1 DER private key, or nil for verify-only parameters.
// The caller owns the returned slice and should clear it.
func (p *SigningParameters) PrivateKey() []byte {
	k, err := p.RSAPrivateKey()
	if err != nil {
		return nil
	}

	return x509.MarshalPKCS1PrivateKey(k)
}

// KeySize returns the modulus length in bits.
func (p *SigningParameters) KeySize() int { return p.keySize }

// CanSign reports whether a usable private key is present.
func (p *SigningParameters) CanSign() bool {
	return p.private != nil && !p.private.Closed()
}

// Close zeroizes the private key.
func (p *SigningParameters) Close() error {
	if p.private == nil {
		return nil
	}

	return p.private.Close()
}

func (p *SigningParameters) keyFile() model.KeyFile {
	priv := p.PrivateKey()
	defer clear(priv)

	return model.KeyFile{
		PrivateKey: base64.StdEncoding.EncodeToString(priv),
		PublicKey:  base64.StdEncoding.EncodeToString(p.PublicKey()),
		KeyLength:  p.keySize,
	}
}

// Export writes the parameters as a JSON key file. The private key is written unencrypted.
func (p *SigningParameters) Export(fs afero.Fs, path string) error {
	b, err := json.Marshal(p.keyFile())
	if err != nil {
		return err
	}

	return afero.WriteFile(fs, path, b, 0o600)
}

// ExportContext is Export with cancellation. The file is staged under a
// temporary name and renamed into place, so a cancelled export leaves no file at path.
func (p *SigningParameters) ExportContext(ctx context.Context, fs afero.Fs, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b, err := json.Marshal(p.keyFile())
	if err != nil {
		return err
	}

	tmp, err := afero.TempFile(fs, filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}

	tmpName := tmp.Name()

	cleanup := func(cause error) error {
		_ = tmp.Close()
		_ = fs.Remove(tmpName)

		return cause
	}

	if _, err := tmp.Write(b); err != nil {
		return cleanup(err)
	}

	if err := ctx.Err(); err != nil {
		return cleanup(err)
	}

	if err := tmp.Close(); err != nil {
		_ = fs.Remove(tmpName)
		return err
	}

	if err := fs.Chmod(tmpName, 0o600); err != nil {
		_ = fs.Remove(tmpName)
		return err
	}

	if err := fs.Rename(tmpName, path); err != nil {
		_ = fs.Remove(tmpName)
		return err
	}

	return nil
}

// Import reads a JSON key file written by Export.
func Import(fs afero.Fs, path string) (*SigningParameters, error) {
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, pkg.EntityNotFoundError{EntityType: "KeyFile", Message: fmt.Sprintf("key file %s not found", path), Err: err}
		}

		return nil, err
	}

	return parseKeyFile(b)
}

// ImportContext is Import with cancellation.
func ImportContext(ctx context.Context, fs afero.Fs, path string) (*SigningParameters, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	params, err := Import(fs, path)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		_ = params.Close()
		return nil, err
	}

	return params, nil
}

func parseKeyFile(b []byte) (*SigningParameters, error) {
	var kf model.KeyFile
	if err := json.Unmarshal(b, &kf); err != nil {
		return nil, pkg.NewInvalidKeyError("key file is not valid JSON", err)
	}

	pub, err := base64.StdEncoding.DecodeString(kf.PublicKey)
	if err != nil {
		return nil, pkg.NewInvalidKeyError("key file public key is not valid base64", err)
	}

	priv, err := base64.StdEncoding.DecodeString(kf.PrivateKey)
	if err != nil {
		return nil, pkg.NewInvalidKeyError("key file private key is not valid base64", err)
	}
	defer clear(priv)

	params, err := SigningParametersFromKeyPair(pub, priv)
	if err != nil {
		return nil, err
	}

	if kf.KeyLength != 0 && kf.KeyLength != params.keySize {
		_ = params.Close()
		return nil, pkg.NewInvalidKeyError(fmt.Sprintf("key length %d does not match key size %d", kf.KeyLength, params.keySize), nil)
	}

	return params, nil
}
