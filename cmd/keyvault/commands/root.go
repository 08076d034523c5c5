package commands

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	keyvault "github.com/dep2p/go-keyvault"
)

// globalFlags 根命令的全局参数
type globalFlags struct {
	home         string
	configFile   string
	backend      string
	namespace    string
	passphrase   string
	logLevel     string
	experimental bool
}

// Execute 执行根命令
func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand 创建根命令
func NewRootCommand() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:          "keyvault",
		Short:        "Cryptographic identities and encrypted credential storage",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if g.home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				g.home = filepath.Join(dir, ".keyvault")
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.home, "home", "", "data dir for the badgerdb backend (default ~/.keyvault)")
	pf.StringVarP(&g.configFile, "config", "c", "", "config file (json or yaml)")
	pf.StringVar(&g.backend, "backend", "badgerdb", "storage backend: memory, credvault, keyring, badgerdb")
	pf.StringVar(&g.namespace, "namespace", "", "storage namespace")
	pf.StringVarP(&g.passphrase, "passphrase", "p", "", "master passphrase (default $KEYVAULT_PASSPHRASE)")
	pf.StringVar(&g.logLevel, "log-level", "", "log level spec, e.g. warn or securestore=debug,info")
	pf.BoolVar(&g.experimental, "experimental", false, "allow experimental algorithms")

	root.AddCommand(
		keygenCmd(g),
		signCmd(g),
		verifyCmd(g),
		exportCmd(g),
		putCmd(g),
		getCmd(g),
		deleteCmd(g),
		listCmd(g),
		algorithmsCmd(),
	)
	return root
}

// options 把全局参数转换为保管库选项
//
// 指定配置文件时，只有显式给出的参数覆盖文件中的值。
func (g *globalFlags) options(cmd *cobra.Command) []keyvault.Option {
	var opts []keyvault.Option
	flags := cmd.Flags()
	fromFile := g.configFile != ""

	if fromFile {
		opts = append(opts, keyvault.WithConfigFile(g.configFile))
	}
	if !fromFile || flags.Changed("backend") {
		opts = append(opts, keyvault.WithBackend(g.backend))
	}
	if !fromFile || flags.Changed("home") {
		opts = append(opts, keyvault.WithDataDir(g.home))
	}
	if flags.Changed("namespace") {
		opts = append(opts, keyvault.WithNamespace(g.namespace))
	}
	if g.passphrase != "" {
		opts = append(opts, keyvault.WithPassphrase([]byte(g.passphrase)))
	}
	if g.logLevel != "" {
		opts = append(opts, keyvault.WithLogLevel(g.logLevel))
	}
	if g.experimental {
		opts = append(opts, keyvault.WithExperimental(true))
	}
	return opts
}

// withVault 打开保管库执行 fn，结束后关闭
func (g *globalFlags) withVault(cmd *cobra.Command, fn func(ctx context.Context, v *keyvault.Vault) error) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	v, err := keyvault.Open(ctx, g.options(cmd)...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := v.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(ctx, v)
}
