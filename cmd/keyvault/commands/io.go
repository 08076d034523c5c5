package commands

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/dep2p/go-keyvault/pkg/lib/keyfmt"
)

// readInput 读取文件内容，path 为空或 "-" 时读取标准输入
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return keyfmt.ReadFile(path)
}

// writeOutput 写入文件，path 为空时写入标准输出
//
// 文件原子替换，权限 0600。
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	return keyfmt.WriteFile(path, data)
}
