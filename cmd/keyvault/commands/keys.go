package commands

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	keyvault "github.com/dep2p/go-keyvault"
	"github.com/dep2p/go-keyvault/pkg/lib/crypto"
	"github.com/dep2p/go-keyvault/pkg/lib/keyfmt"
	"github.com/dep2p/go-keyvault/pkg/lib/seal"
	"github.com/dep2p/go-keyvault/pkg/types"
)

// ExportPassphraseEnv 加密导出私钥时读取口令的环境变量
const ExportPassphraseEnv = "KEYVAULT_EXPORT_PASSPHRASE"

// errBadSignature 签名验证未通过
var errBadSignature = errors.New("signature verification failed")

// ============================================================================
//                              keygen
// ============================================================================

func keygenCmd(g *globalFlags) *cobra.Command {
	var (
		algName string
		rsaBits int
		force   bool
	)

	cmd := &cobra.Command{
		Use:   "keygen <name>",
		Short: "Generate an identity and store it in the vault",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			alg, err := crypto.ParseAlgorithm(algName)
			if err != nil {
				return err
			}
			if alg.Experimental() && !g.experimental {
				return fmt.Errorf("%w: %s requires --experimental", types.ErrUnsupportedFeature, alg)
			}

			return g.withVault(cmd, func(ctx context.Context, v *keyvault.Vault) error {
				ids := v.Identities()
				if !force {
					existing, err := ids.Load(ctx, name)
					if err == nil {
						existing.Destroy()
						return fmt.Errorf("identity %q already exists (use --force to replace)", name)
					}
					if !types.IsNotFound(err) {
						return err
					}
				}

				id, err := crypto.Generate(alg, nil, crypto.WithRSABits(rsaBits))
				if err != nil {
					return err
				}
				defer id.Destroy()

				if err := ids.Save(ctx, name, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Identity created.\nName:        %s\nID:          %s\nAlgorithm:   %s\nFingerprint: %s\n",
					name, id.ID(), id.Algorithm(), id.Fingerprint())
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&algName, "alg", "a", crypto.Ed25519.String(), "algorithm (see `keyvault algorithms`)")
	cmd.Flags().IntVar(&rsaBits, "rsa-bits", 0, "RSA modulus size: 2048, 3072 or 4096")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "replace an existing identity")
	return cmd
}

// ============================================================================
//                              sign / verify
// ============================================================================

func signCmd(g *globalFlags) *cobra.Command {
	var in string

	cmd := &cobra.Command{
		Use:   "sign <name>",
		Short: "Sign a message with a stored identity (base64 signature on stdout)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := readInput(cmd, in)
			if err != nil {
				return err
			}

			return g.withVault(cmd, func(ctx context.Context, v *keyvault.Vault) error {
				id, err := v.Identities().Load(ctx, args[0])
				if err != nil {
					return err
				}
				defer id.Destroy()

				sig, err := id.Sign(msg)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), base64.StdEncoding.EncodeToString(sig))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&in, "in", "i", "", "message file (default stdin)")
	return cmd
}

func verifyCmd(g *globalFlags) *cobra.Command {
	var (
		name    string
		pubFile string
		sigB64  string
		in      string
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a signature against a stored identity or a public key PEM",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (name == "") == (pubFile == "") {
				return fmt.Errorf("exactly one of --name or --pubkey is required")
			}
			sig, err := base64.StdEncoding.DecodeString(sigB64)
			if err != nil {
				return fmt.Errorf("%w: signature is not base64", types.ErrInvalidSignatureFormat)
			}
			msg, err := readInput(cmd, in)
			if err != nil {
				return err
			}

			var ok bool
			if pubFile != "" {
				text, err := keyfmt.ReadFile(pubFile)
				if err != nil {
					return err
				}
				id, err := keyfmt.DecodeIdentity(text)
				if err != nil {
					return err
				}
				defer id.Destroy()
				if ok, err = id.Verify(msg, sig); err != nil {
					return err
				}
			} else {
				err := g.withVault(cmd, func(ctx context.Context, v *keyvault.Vault) error {
					id, err := v.Identities().Load(ctx, name)
					if err != nil {
						return err
					}
					defer id.Destroy()
					ok, err = id.Verify(msg, sig)
					return err
				})
				if err != nil {
					return err
				}
			}

			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "invalid")
				return errBadSignature
			}
			fmt.Fprintln(cmd.OutOrStdout(), "valid")
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "stored identity name")
	cmd.Flags().StringVar(&pubFile, "pubkey", "", "public key PEM file")
	cmd.Flags().StringVarP(&sigB64, "sig", "s", "", "base64 signature")
	cmd.Flags().StringVarP(&in, "in", "i", "", "message file (default stdin)")
	_ = cmd.MarkFlagRequired("sig")
	return cmd
}

// ============================================================================
//                              export
// ============================================================================

func exportCmd(g *globalFlags) *cobra.Command {
	var (
		partName string
		out      string
		sealOut  bool
	)

	cmd := &cobra.Command{
		Use:   "export <name>",
		Short: "Export a stored identity as PEM",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			which, err := crypto.ParseKeyPart(partName)
			if err != nil {
				return err
			}

			var exportPass []byte
			if sealOut {
				if which != crypto.PrivatePart {
					return fmt.Errorf("--seal only applies to private keys")
				}
				exportPass = []byte(os.Getenv(ExportPassphraseEnv))
				if len(exportPass) == 0 {
					return fmt.Errorf("--seal requires $%s", ExportPassphraseEnv)
				}
				defer seal.Wipe(exportPass)
			}

			return g.withVault(cmd, func(ctx context.Context, v *keyvault.Vault) error {
				id, err := v.Identities().Load(ctx, args[0])
				if err != nil {
					return err
				}
				defer id.Destroy()

				text, err := keyfmt.EncodeIdentity(id, which)
				if err != nil {
					return err
				}
				defer seal.Wipe(text)

				if !sealOut {
					return writeOutput(cmd, out, text)
				}

				blob, err := seal.NewEngine().SealWithPassphrase(exportPass, seal.DefaultKDFParams(seal.KDFArgon2id), text, nil)
				if err != nil {
					return err
				}
				raw, err := blob.MarshalBinary()
				if err != nil {
					return err
				}
				return writeOutput(cmd, out, []byte(base64.StdEncoding.EncodeToString(raw)+"\n"))
			})
		},
	}

	cmd.Flags().StringVar(&partName, "part", "public", "key part: public or private")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&sealOut, "seal", false, "encrypt the private key PEM with $"+ExportPassphraseEnv)
	return cmd
}
