package config

// SafeErrorMessage 根据运行模式决定是否向客户端暴露内部错误详情
// release 模式只返回 fallback，开发环境返回原始错误便于排查
func SafeErrorMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	if GlobalConfig != nil && GlobalConfig.Server.Mode == "release" {
		return fallback
	}
	return err.Error()
}
