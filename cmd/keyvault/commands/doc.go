// Package commands 实现 keyvault 命令行的各个子命令
//
// 每次调用打开一次保管库，执行完毕后关闭。默认使用 ~/.keyvault 下的
// badgerdb 后端，口令从 KEYVAULT_PASSPHRASE 或 -p 读取。
//
//	keyvault keygen node --alg ed25519
//	keyvault sign node --in msg.txt
//	keyvault verify --name node --sig <base64> --in msg.txt
//	echo -n s3cr3t | keyvault put svc/db-password
//	keyvault get svc/db-password
package commands
