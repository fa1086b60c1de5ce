package config

// SafeErrorMessage release 模式下不向客户端暴露内部错误详情，避免信息泄露
// 开发（debug/未初始化）环境返回原始错误便于排查
func SafeErrorMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	if GlobalConfig != nil && GlobalConfig.Server.Mode == "release" {
		return fallback
	}
	return err.Error()
}
