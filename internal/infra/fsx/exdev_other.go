//go:build !unix

package fsx

// 非 unix 平台：os.Rename 跨卷失败时的错误码各异，统一按普通移动失败处理。
func isEXDEV(err error) bool { return false }
