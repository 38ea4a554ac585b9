package config

import "strings"

// Extensions 是清洗后的主文件扩展名集合（小写、无前导点、去重、保持首次出现顺序）。
type Extensions []string

// SanitizeExtensions 清洗用户输入的逗号分隔扩展名：
// 小写、去空白、去前导点、丢弃空项；结果为空时回退到 DefaultExtensions。
// 与落盘格式一致，不去重。
func SanitizeExtensions(s string) string {
	if strings.TrimSpace(s) == "" {
		return DefaultExtensions
	}
	parts := strings.Split(strings.ToLower(s), ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(p), "."))
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return DefaultExtensions
	}
	return strings.Join(out, ",")
}

// ParseExtensions 清洗并去重，得到可直接匹配的集合。
func ParseExtensions(s string) Extensions {
	parts := strings.Split(SanitizeExtensions(s), ",")
	seen := make(map[string]struct{}, len(parts))
	out := make(Extensions, 0, len(parts))
	for _, p := range parts {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Has 判断扩展名（可带前导点，忽略大小写）是否在集合内。
func (e Extensions) Has(ext string) bool {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "" {
		return false
	}
	for _, x := range e {
		if x == ext {
			return true
		}
	}
	return false
}

func (e Extensions) String() string { return strings.Join(e, ",") }
