package keyvault

import (
	"errors"
	"fmt"

	"github.com/dep2p/go-keyvault/pkg/types"
)

// 公共错误定义
var (
	// ErrNotStarted 保管库未启动
	ErrNotStarted = errors.New("vault not started")

	// ErrAlreadyStarted 保管库已启动
	ErrAlreadyStarted = errors.New("vault already started")

	// ErrVaultClosed 保管库已关闭
	ErrVaultClosed = fmt.Errorf("%w: vault closed", types.ErrStoreClosed)

	// ErrNoIdentity 未配置默认身份
	ErrNoIdentity = errors.New("no default identity configured")
)
